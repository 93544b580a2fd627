package category

import "regexp"

// Category 商品分類鍵
type Category string

// 固定的分類集合
const (
	FruitsVegetables Category = "fruits-vegetables"
	Meat             Category = "meat"
	Fish             Category = "fish"
	Dairy            Category = "dairy"
	Bread            Category = "bread"
	Frozen           Category = "frozen"
	Pantry           Category = "pantry"
	Spices           Category = "spices"
	Drinks           Category = "drinks"
	Snacks           Category = "snacks"
	Household        Category = "household"
	Other            Category = "other"
)

// allCategories 依顯示順序排列
var allCategories = []Category{
	FruitsVegetables, Meat, Fish, Dairy, Bread, Frozen,
	Pantry, Spices, Drinks, Snacks, Household, Other,
}

// All 回傳固定的分類集合
func All() []Category {
	return append([]Category(nil), allCategories...)
}

// IsValid 檢查分類是否屬於固定集合
func (c Category) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// keywordTable 單一分類的關鍵字表
type keywordTable struct {
	category Category
	keywords []string
}

// defaultKeywordTables 預設關鍵字表（冷凍類另外以 frozenPattern 偵測）
var defaultKeywordTables = []keywordTable{
	{FruitsVegetables, []string{
		"omena", "banaani", "appelsiini", "sitruuna", "lime", "mandariini", "päärynä",
		"viinirypäle", "vesimeloni", "meloni", "ananas", "avokado", "mango", "kiivi",
		"tomaatti", "kirsikkatomaatti", "kurkku", "peruna", "sipuli", "punasipuli",
		"valkosipuli", "kevätsipuli", "purjo", "porkkana", "paprika", "salaatti",
		"jäävuorisalaatti", "kaali", "parsakaali", "kukkakaali", "herne", "pinaatti",
		"selleri", "lanttu", "punajuuri", "retiisi", "kesäkurpitsa", "munakoiso",
		"sieni", "herkkusieni", "kantarelli", "inkivääri", "persilja", "tilli",
		"basilika", "korianteri", "ruohosipuli", "mansikka", "mustikka", "puolukka",
		"vadelma", "hedelmä", "vihannes", "marja", "kasvis", "maissintähkä",
	}},
	{Meat, []string{
		"liha", "jauheliha", "kana", "broileri", "kalkkuna", "possu", "porsas", "sika",
		"nauta", "naudanliha", "lammas", "kinkku", "pekoni", "makkara", "nakki",
		"lenkki", "filee", "pihvi", "kassler", "salami", "chorizo", "leikkele",
		"maksa", "paisti",
	}},
	{Fish, []string{
		"kala", "lohi", "kirjolohi", "silakka", "tonnikala", "katkarapu", "rapu",
		"muikku", "siika", "turska", "seiti", "ahven", "hauki", "sardiini",
		"anjovis", "simpukka", "äyriäinen", "mäti", "kalapuikko",
	}},
	{Dairy, []string{
		"maito", "piimä", "kerma", "ruokakerma", "vispikerma", "kermaviili", "viili",
		"jogurtti", "rahka", "maitorahka", "juusto", "raejuusto", "tuorejuusto",
		"voi", "margariini", "levite", "kananmuna", "muna", "smetana", "mozzarella",
		"parmesaani", "feta", "halloumi", "kefiiri", "kaurajuoma", "soijajuoma",
	}},
	{Bread, []string{
		"leipä", "ruisleipä", "paahtoleipä", "näkkileipä", "voileipä", "sämpylä",
		"patonki", "pulla", "korppu", "tortilla", "pita", "croissant", "rieska",
		"leivonnainen", "kakku", "piirakka",
	}},
	{Pantry, []string{
		"jauho", "vehnäjauho", "ruisjauho", "perunajauho", "sokeri", "tomusokeri",
		"fariinisokeri", "vaniljasokeri", "riisi", "pasta", "makaroni", "spagetti",
		"nuudeli", "kaurahiutale", "hiutale", "öljy", "oliiviöljy", "rypsiöljy",
		"etikka", "ketsuppi", "sinappi", "majoneesi", "hunaja", "hillo", "murot",
		"mysli", "papu", "linssi", "kikherne", "tomaattimurska", "tomaattipyree",
		"säilyke", "liemi", "fondi", "kastike", "soijakastike", "leivinjauhe",
		"ruokasooda", "hiiva", "kaakao", "siirappi", "kookosmaito", "maissi",
	}},
	{Spices, []string{
		"suola", "merisuola", "pippuri", "mustapippuri", "valkopippuri",
		"maustepippuri", "paprikajauhe", "kaneli", "kardemumma", "curry", "chili",
		"oregano", "timjami", "rosmariini", "kumina", "muskotti", "mauste",
		"neilikka", "laakerinlehti", "kurkuma", "juustokumina", "yrttisekoitus",
		"inkiväärijauhe", "valkosipulijauhe",
	}},
	{Drinks, []string{
		"mehu", "appelsiinimehu", "vesi", "kivennäisvesi", "limonadi", "olut",
		"siideri", "viini", "punaviini", "valkoviini", "kahvi", "tee", "juoma",
		"virvoitusjuoma", "energiajuoma", "smoothie",
	}},
	{Snacks, []string{
		"suklaa", "karkki", "sipsi", "sipsit", "keksi", "pikkuleipä", "pähkinä",
		"manteli", "popcorn", "lakritsi", "pastilli", "patukka", "välipalapatukka",
		"rusina",
	}},
	{Household, []string{
		"talouspaperi", "wc-paperi", "vessapaperi", "pesuaine", "astianpesuaine",
		"pyykinpesuaine", "tiskiaine", "roskapussi", "pakastepussi", "folio",
		"leivinpaperi", "kelmu", "saippua", "shampoo", "hammastahna", "servetti",
		"paristo",
	}},
}

// frozenPattern 冷凍狀態前綴，直接判定為冷凍類
var frozenPattern = regexp.MustCompile(`(?:^|[^\p{L}])(?:pakaste|pakastettu|pakastetut|pakastettua|pakastettuja|jäädytetty|jäädytettyä|jäätelö)`)

// frozenExceptions 含冷凍字首但不屬於冷凍食品的詞
var frozenExceptions = []string{"pakastepussi", "pakasterasia", "pakastekaappi"}

// cloneTables 複製關鍵字表，讓每個分類器實例可以獨立增加學習關鍵字
func cloneTables(tables []keywordTable) []keywordTable {
	out := make([]keywordTable, len(tables))
	for i, t := range tables {
		out[i] = keywordTable{
			category: t.category,
			keywords: append([]string(nil), t.keywords...),
		}
	}
	return out
}
