package chunker

import (
	"regexp"
	"strings"
)

// GeneralChunkType is assigned when no taxonomy pattern matches.
const GeneralChunkType = "general"

// typeEntry pairs a chunk type with the patterns that select it.
type typeEntry struct {
	label    string
	patterns []*regexp.Regexp
}

// chunkTypePatterns is evaluated first to last and the first label with any
// matching pattern wins. Order is load-bearing: specific document kinds come
// before generic financial vocabulary, so text mentioning both a contract
// and an amount stays "contract".
var chunkTypePatterns = []typeEntry{
	// Identity documents
	{"passport", compileAll(
		`паспорт`, `серия`, `номер паспорт`, `выдан`, `код подразделения`,
		`место рождения`, `дата рождения`, `гражданин`, `удостоверяющ`,
		`passport`, `фио`, `фамилия.*имя.*отчество`,
	)},
	// Tax statements
	{"ndfl", compileAll(
		`ндфл`, `2-ндфл`, `3-ндфл`, `справка о доходах`, `налоговый агент`,
		`налогооблагаем`, `вычет`, `удержан`, `исчислен`, `налоговая база`,
		`сумма дохода`, `код дохода`,
	)},
	// Application forms
	{"questionnaire", compileAll(
		`анкет`, `заявлени`, `персональные данные`, `согласие на обработку`,
		`семейное положение`, `образование`, `место работы`, `должность`,
		`стаж`, `контактные данные`, `телефон`, `email`, `адрес проживания`,
	)},
	// Bank statements
	{"bank_statement", compileAll(
		`выписка`, `банковск`, `остаток`, `оборот`, `дебет`, `кредит`,
		`расчетный счет`, `корреспондент`, `бик`, `swift`,
	)},
	// Loan documents
	{"credit", compileAll(
		`кредит`, `займ`, `ссуда`, `процентная ставка`, `график платежей`,
		`погашение`, `задолженност`, `лимит`, `кредитная история`,
	)},
	// Employment records
	{"employment", compileAll(
		`трудов`, `работодатель`, `заработн`, `оклад`, `премия`,
		`трудоустро`, `увольнени`, `приказ`, `табель`,
	)},
	// Property records
	{"property", compileAll(
		`недвижимост`, `собственност`, `кадастр`, `егрн`, `право собственности`,
		`квартир`, `дом`, `земельн`, `площадь`, `объект недвижимости`,
	)},
	// Contracts
	{"contract", compileAll(
		`договор`, `контракт`, `соглашение`, `условия договора`,
		`обязательств`, `сторон`, `подписан`, `срок действия`,
	)},
	// Invoices and payments
	{"invoice", compileAll(
		`счет`, `счёт`, `фактура`, `оплат`, `платеж`,
		`invoice`, `payment`, `к оплате`, `реквизиты`,
	)},
	// Risk signals
	{"risk", compileAll(
		`риск`, `просрочк`, `штраф`, `пени`, `нарушени`,
		`угроз`, `опасност`, `дефолт`, `неплатеж`,
	)},
	// Generic financial vocabulary, last on purpose
	{"financial", compileAll(
		`сумм`, `стоимост`, `цен`, `бюджет`, `финанс`,
		`рубл`, `доллар`, `евро`, `валют`, `итого`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// InferChunkType maps a heading/text pair to one taxonomy label. The first
// label whose pattern set matches the case-folded concatenation wins; no
// scoring, no multi-label output.
func InferChunkType(heading *string, text string) string {
	h := ""
	if heading != nil {
		h = *heading
	}
	combined := strings.ToLower(h + " " + text)

	for _, entry := range chunkTypePatterns {
		for _, re := range entry.patterns {
			if re.MatchString(combined) {
				return entry.label
			}
		}
	}
	return GeneralChunkType
}
