package notifier

import "golang.org/x/text/language"

// templates holds the localized strings used when rendering client messages.
type templates struct {
	greeting      string // client full name
	singleArrived string // tracking number
	multiArrived  string // order count
	orderLine     string // index, tracking number
	statusLine    string // status
	weightLine    string // formatted weight
	priceLine     string // formatted price
	pickupLine    string // pickup point
	notSpecified  string
}

var (
	kyrgyz = language.MustParse("ky")

	supportedLocales = []language.Tag{
		language.Russian, // default
		kyrgyz,
	}
	localeMatcher = language.NewMatcher(supportedLocales)

	catalogs = map[language.Tag]templates{
		language.Russian: {
			greeting:      "Здравствуйте, %s!",
			singleArrived: "Ваш заказ с трек-номером %s прибыл на склад.",
			multiArrived:  "На склад прибыло %d ваших заказов:",
			orderLine:     "%d) %s",
			statusLine:    "Статус: %s",
			weightLine:    "Вес: %s кг",
			priceLine:     "Сумма: %s сом",
			pickupLine:    "Пункт выдачи: %s",
			notSpecified:  "не указано",
		},
		kyrgyz: {
			greeting:      "Саламатсызбы, %s!",
			singleArrived: "%s трек-номерлүү буюртмаңыз кампага келди.",
			multiArrived:  "Кампага %d буюртмаңыз келди:",
			orderLine:     "%d) %s",
			statusLine:    "Абалы: %s",
			weightLine:    "Салмагы: %s кг",
			priceLine:     "Суммасы: %s сом",
			pickupLine:    "Алуу пункту: %s",
			notSpecified:  "көрсөтүлгөн эмес",
		},
	}
)

// templatesFor resolves the best supported catalog for a BCP 47 locale
// string. Unknown locales fall back to Russian.
func templatesFor(locale string) templates {
	tag, _ := language.MatchStrings(localeMatcher, locale)
	if t, ok := catalogs[tag]; ok {
		return t
	}

	// The matcher can return a regional variant of a supported base tag.
	base, _ := tag.Base()
	for supported, t := range catalogs {
		if supportedBase, _ := supported.Base(); supportedBase == base {
			return t
		}
	}
	return catalogs[language.Russian]
}
