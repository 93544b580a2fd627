package merger

// UnitConversion 單位換算到基準單位
type UnitConversion struct {
	Unit     string
	BaseUnit string
	Factor   float64
}

const (
	unitMilliliter = "ml"
	unitDeciliter  = "dl"
	unitLiter      = "l"
	unitGram       = "g"
	unitKilogram   = "kg"

	escalationThreshold = 1000.0
	deciliterStep       = 25.0
)

// unitConversions 體積換算為 ml、重量換算為 g，計數單位以自身為基準
var unitConversions = map[string]UnitConversion{
	"ml":  {"ml", unitMilliliter, 1},
	"cl":  {"cl", unitMilliliter, 10},
	"dl":  {"dl", unitMilliliter, 100},
	"l":   {"l", unitMilliliter, 1000},
	"tl":  {"tl", unitMilliliter, 5},
	"rkl": {"rkl", unitMilliliter, 15},
	"mm":  {"mm", unitMilliliter, 1},
	"mg":  {"mg", unitGram, 0.001},
	"g":   {"g", unitGram, 1},
	"kg":  {"kg", unitGram, 1000},

	"kpl":     {"kpl", "kpl", 1},
	"prk":     {"prk", "prk", 1},
	"pkt":     {"pkt", "pkt", 1},
	"pss":     {"pss", "pss", 1},
	"plo":     {"plo", "plo", 1},
	"tlk":     {"tlk", "tlk", 1},
	"rs":      {"rs", "rs", 1},
	"nippu":   {"nippu", "nippu", 1},
	"viipale": {"viipale", "viipale", 1},
	"kynsi":   {"kynsi", "kynsi", 1},
	"annos":   {"annos", "annos", 1},
	"ripaus":  {"ripaus", "ripaus", 1},
}

// unitAliases 常見的單位寫法
var unitAliases = map[string]string{
	"kappale":    "kpl",
	"kappaletta": "kpl",
	"purkki":     "prk",
	"purkkia":    "prk",
	"paketti":    "pkt",
	"pakettia":   "pkt",
	"pussi":      "pss",
	"pussia":     "pss",
	"pullo":      "plo",
	"pulloa":     "plo",
	"tölkki":     "tlk",
	"tölkkiä":    "tlk",
	"rasia":      "rs",
	"rasiaa":     "rs",
	"nippua":     "nippu",
	"viipaletta": "viipale",
	"kynttä":     "kynsi",
	"annosta":    "annos",
	"ripausta":   "ripaus",
	"litra":      "l",
	"litraa":     "l",
	"kilo":       "kg",
	"kiloa":      "kg",
	"gramma":     "g",
	"grammaa":    "g",
	"desi":       "dl",
	"desiä":      "dl",
}

// canonicalUnit 將單位轉為標準寫法
func canonicalUnit(unit string) string {
	if alias, ok := unitAliases[unit]; ok {
		return alias
	}
	return unit
}

// conversionFor 回傳單位換算；未知單位視為以自身為基準的計數單位
func conversionFor(unit string) UnitConversion {
	if conv, ok := unitConversions[unit]; ok {
		return conv
	}
	return UnitConversion{Unit: unit, BaseUnit: unit, Factor: 1}
}

// isCountingUnit 計數單位（不顯示小數）
func isCountingUnit(unit string) bool {
	conv := conversionFor(unit)
	return conv.BaseUnit != unitMilliliter && conv.BaseUnit != unitGram
}
