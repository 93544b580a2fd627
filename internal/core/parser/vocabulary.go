package parser

// unitVocabulary 食材數量單位，較長的寫法必須排在共用前綴的較短寫法之前
var unitVocabulary = []string{
	"kappaletta", "kappale", "kpl",
	"purkkia", "purkki", "prk",
	"pakettia", "paketti", "pkt",
	"pussia", "pussi", "pss",
	"pulloa", "pullo", "plo",
	"tölkkiä", "tölkki", "tlk",
	"rasiaa", "rasia", "rs",
	"ruokalusikallista", "ruokalusikka", "rkl",
	"teelusikallista", "teelusikka", "tl",
	"litraa", "litra", "dl", "cl", "ml", "l",
	"kilogrammaa", "kiloa", "kilo", "kg",
	"grammaa", "gramma", "mg", "g",
	"nippua", "nippu",
	"viipaletta", "viipale",
	"kynttä", "kynsi",
	"annosta", "annos",
	"ripausta", "ripaus",
	"mm",
}

// mainBrands 已知的主要品牌
var mainBrands = []string{
	"Arla", "Valio", "Atria", "HK", "Saarioinen", "Fazer", "Pirkka", "Rainbow",
	"K-Menu", "Snellman", "Felix", "Dava", "Apetit", "Findus", "Oululainen",
	"Vaasan", "Elovena", "Paulig", "Kavli", "Oatly", "Alpro", "Benecol", "Flora",
	"Keiju", "Polar", "Kariniemen",
}

// subBrands 緊接在主要品牌後面時才視為子品牌
var subBrands = []string{
	"Lempi", "Luomu", "Eila", "Profeel", "Oltermanni", "Koskenlaskija", "Viola",
	"Keso", "Ingmariini",
}

// temperatureWords 溫度狀態（冷凍字首保留在名稱中，讓分類器判定冷凍類）
var temperatureWords = []string{
	"huoneenlämpöisenä", "huoneenlämpöistä", "huoneenlämpöinen", "huoneenlämmössä",
	"jäähdytettyä", "jäähdytetty", "sulatettuna", "sulatettua", "sulatettu",
	"lämpimänä", "lämmintä", "lämmin", "kylmänä", "kylmää", "kylmä",
	"jäisenä", "jäinen", "kuumaa", "kuuma",
}

// unnecessaryMarkers 括號內出現時表示替代建議，整個括號可以移除
var unnecessaryMarkers = []string{
	"tai", "myös", "vastaava", "vastaavaa", "esim.", "esimerkiksi", "korvaa",
	"korvata", "käy",
}

// preparationWords 處理方式（分詞形式）
var preparationWords = []string{
	"hienonnettuna", "hienonnettua", "hienonnettu",
	"pilkottuna", "pilkottua", "pilkottu",
	"kuutioituna", "kuutioitua", "kuutioitu",
	"raastettuna", "raastettua", "raastettu",
	"viipaloituna", "viipaloitua", "viipaloitu",
	"kuorittuna", "kuorittua", "kuorittu",
	"murskattuna", "murskattua", "murskattu",
	"paahdettuna", "paahdettua", "paahdettu",
	"keitettynä", "keitettyä", "keitetty",
	"silputtuna", "silputtua", "silputtu",
	"suikaloituna", "suikaloitua", "suikaloitu",
	"soseutettuna", "soseutettua", "soseutettu",
	"liotettuna", "liotettua", "liotettu",
	"valutettuna", "valutettua", "valutettu",
	"paistettuna", "paistettua", "paistettu",
	"revittynä", "revittyä", "revitty",
}

// placeholderTexts 表示使用者不確定內容的佔位文字
var placeholderTexts = []string{"jotain", "tms", "???"}
