package lemmatizer

import "regexp"

// suffixRule 詞尾替換規則
type suffixRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// ruleCategory 一組同類詞尾規則，每組最多套用一條
type ruleCategory struct {
	name  string
	rules []suffixRule
}

func rule(pattern, replacement string) suffixRule {
	return suffixRule{pattern: regexp.MustCompile(pattern), replacement: replacement}
}

// specialCases 例外字典，直接對應到基本形
var specialCases = map[string]string{
	"tomaatteja":         "tomaatti",
	"tomaatit":           "tomaatti",
	"tomaattia":          "tomaatti",
	"kirsikkatomaatteja": "kirsikkatomaatti",
	"perunoita":          "peruna",
	"perunaa":            "peruna",
	"perunat":            "peruna",
	"sipulia":            "sipuli",
	"sipulit":            "sipuli",
	"sipulin":            "sipuli",
	"punasipulia":        "punasipuli",
	"valkosipulia":       "valkosipuli",
	"valkosipulinkynttä": "valkosipuli",
	"valkosipulinkynsiä": "valkosipuli",
	"kynttä":             "kynsi",
	"kynsiä":             "kynsi",
	"kananmunia":         "kananmuna",
	"kananmunaa":         "kananmuna",
	"munia":              "muna",
	"munaa":              "muna",
	"omenoita":           "omena",
	"omenaa":             "omena",
	"omenat":             "omena",
	"porkkanoita":        "porkkana",
	"porkkanaa":          "porkkana",
	"porkkanat":          "porkkana",
	"jauhelihaa":         "jauheliha",
	"maitoa":             "maito",
	"voita":              "voi",
	"juustoa":            "juusto",
	"kermaa":             "kerma",
	"sokeria":            "sokeri",
	"suolaa":             "suola",
	"pippuria":           "pippuri",
	"jauhoja":            "jauho",
	"vehnäjauhoja":       "vehnäjauho",
	"riisiä":             "riisi",
	"lohta":              "lohi",
	"lohen":              "lohi",
	"leipää":             "leipä",
	"kurkkua":            "kurkku",
	"banaaneja":          "banaani",
	"mansikoita":         "mansikka",
	"herneitä":           "herne",
	"sieniä":             "sieni",
	"vettä":              "vesi",
	"olut":               "olut",
	"olutta":             "olut",
	"viiniä":             "viini",
	"öljyä":              "öljy",
	"oliiviöljyä":        "oliiviöljy",
	"kaurahiutaleita":    "kaurahiutale",
	"hiutaleita":         "hiutale",
	"paprikaa":           "paprika",
	"sitruunaa":          "sitruuna",
	"mustikoita":         "mustikka",
	"puolukoita":         "puolukka",
	"nakkeja":            "nakki",
	"makkaraa":           "makkara",
	"kinkkua":            "kinkku",
	"rahkaa":             "rahka",
	"jogurttia":          "jogurtti",
	"pastaa":             "pasta",
	"makaronia":          "makaroni",
	"vaniljasokeria":     "vaniljasokeri",
}

// compoundPrefixes 複合詞前綴，去除後露出基本名詞
var compoundPrefixes = regexp.MustCompile(`^(?:aurinkokuivatut|aurinkokuivattu|aurinkokuivattuja|pakaste|tuore|tuoreet|jauhettu|jauhetut)\s*(\S.*)$`)

// inflectionCategories 依順序套用的詞尾類別
var inflectionCategories = []ruleCategory{
	{
		name: "partitive",
		rules: []suffixRule{
			rule(`^(.{3,})oita$`, "${1}a"),
			rule(`^(.{3,})öitä$`, "${1}ä"),
			rule(`^(.{3,})eita$`, "${1}e"),
			rule(`^(.{3,})eitä$`, "${1}e"),
			rule(`^(.{3,})eja$`, "${1}i"),
			rule(`^(.{3,})ejä$`, "${1}i"),
			rule(`^(.{3,})aa$`, "${1}a"),
			rule(`^(.{3,})ää$`, "${1}ä"),
			rule(`^(.{3,})oa$`, "${1}o"),
			rule(`^(.{3,})öä$`, "${1}ö"),
			rule(`^(.{3,})ua$`, "${1}u"),
			rule(`^(.{3,})yä$`, "${1}y"),
			rule(`^(.{3,})ia$`, "${1}i"),
			rule(`^(.{3,})iä$`, "${1}i"),
			rule(`^(.{3,})ea$`, "${1}e"),
			rule(`^(.{3,})eä$`, "${1}e"),
		},
	},
	{
		name: "genitive",
		rules: []suffixRule{
			rule(`^(.{3,}[aeiouyäö])n$`, "${1}"),
		},
	},
	{
		name: "plural",
		rules: []suffixRule{
			rule(`^(.{3,}[aeiouyäö])t$`, "${1}"),
		},
	},
	{
		name: "comparative",
		rules: []suffixRule{
			rule(`^(.{2,})mpi$`, "${1}"),
			rule(`^(.{2,})mmat$`, "${1}"),
		},
	},
	{
		name: "participle",
		rules: []suffixRule{
			rule(`^(.{3,})ttu$`, "${1}"),
			rule(`^(.{3,})tty$`, "${1}"),
			rule(`^(.{3,})tu$`, "${1}"),
			rule(`^(.{3,})ty$`, "${1}"),
		},
	},
}

// stopWords 關鍵字擷取時忽略的詞
var stopWords = map[string]bool{
	"ja": true, "tai": true, "sekä": true, "noin": true, "myös": true,
	"kpl": true, "rkl": true, "prk": true, "pkt": true, "pss": true,
	"hieman": true, "vähän": true, "paljon": true, "tarvittaessa": true,
	"maun": true, "mukaan": true, "esim": true, "iso": true, "isoa": true,
	"pieni": true, "pientä": true, "keskikokoinen": true, "keskikokoista": true,
	"kevyt": true, "luomu": true, "tuore": true, "tuoretta": true,
}
