package recipes

import (
	"regexp"
	"sort"
	"strings"
)

// Confidence grades how likely a parsed ingredient name is usable as a
// catalog search term.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParsedIngredient is one line extracted from pasted recipe text.
type ParsedIngredient struct {
	Original   string     `json:"original"`
	Name       string     `json:"name"`
	Section    string     `json:"section,omitempty"`
	Optional   bool       `json:"optional"`
	Confidence Confidence `json:"confidence"`
}

// Prep terms stripped from ingredient lines. Words like "ground" or
// "crushed" are handled separately because they can name the product
// itself (ground beef, crushed tomatoes).
var prepWords = wordSet(
	"chopped", "diced", "minced", "grated", "shredded", "sliced",
	"peeled", "seeded", "fresh", "frozen",
	"dried", "cooked", "uncooked", "raw", "cut",
	"halved", "quartered", "whole", "boneless", "skinless",
	"pounded", "melted", "softened", "beaten", "sifted",
	"trimmed", "cubed", "julienned", "rough", "finely",
	"thinly", "thickly", "smashed", "mashed", "pureed",
	"blanched", "toasted", "grilled", "fried",
	"divided", "room", "temperature", "more", "taste", "needed",
	"rinsed", "drained", "patted", "dry", "squeezed",
	"stem", "removed", "deveined", "gutted", "scaled",
	"pitted", "cored", "ribbed", "scrubbed", "washed",
	"soaked", "rehydrated", "thawed", "defrosted",
	"crumbled", "flaked", "torn", "pulled", "stripped",
	"and",
)

var brandNames = []string{
	"King Arthur", "McCormick", "Kraft", "Barilla", "Rao's",
	"Trader Joe's", "Swanson", "Hunt's", "De Cecco", "Dole",
	"Sargento", "Applegate", "Bertolli", "Galbani", "San Marzano",
	"Kerrygold", "Land O Lakes", "Philadelphia", "Hellmann's",
	"French's", "Heinz", "Kikkoman", "Lee Kum Kee", "Grey Poupon",
	"Tabasco", "Frank's", "Cholula", "Sriracha", "Huy Fong",
	"Bob's Red Mill", "Ghirardelli", "Callebaut", "Valrhona",
	"Penzeys", "Simply Organic", "Morton", "Diamond Crystal",
}

var sizeWords = wordSet(
	"small", "medium", "large", "extra large", "extra-large", "xl",
	"jumbo", "baby", "mini", "giant", "big", "little", "tiny",
	"petite", "young", "mature", "thick", "thin", "wide", "narrow",
)

var colorWords = wordSet(
	"green", "red", "yellow", "orange", "purple", "white", "black",
)

// First-position words that name the product rather than describe prep.
var productDescriptors = wordSet(
	"ground", "crushed", "marinated", "roasted", "smoked",
	"pickled", "cured", "aged", "fermented",
)

var qualityWords = wordSet(
	"fresh", "organic", "free-range", "free range", "grass-fed", "grass fed",
	"wild-caught", "wild caught", "cage-free", "cage free",
	"extra virgin", "extra-virgin", "virgin", "extra", "pure", "natural",
	"premium", "select", "choice", "prime", "quality", "good",
	"best", "favorite", "favourite", "homemade", "store-bought",
	"high-quality", "high quality", "artisan", "artisanal",
	"certified", "authentic", "traditional", "classic", "old-fashioned",
	"full", "fat", "full fat", "whole", "skim", "low-fat", "low fat",
	"reduced", "reduced-fat", "nonfat", "non-fat", "sweet",
	"ripe", "unripe", "mature", "young",
	"salted", "unsalted", "lightly salted",
	"very", "cold", "hot", "warm", "cool",
	"dry", "wet", "moist",
	"canned", "fine", "coarse", "coarsely",
	"preferably", "freshly", "freshly-ground",
)

// Color is dropped before these words (green bell pepper -> bell
// pepper) and kept elsewhere (white onion stays white onion).
var colorRemovableBefore = wordSet("pepper", "peppers", "bell", "cabbage", "squash")

var commonSingleIngredients = wordSet(
	"salt", "pepper", "sugar", "flour", "butter", "milk", "water",
	"eggs", "egg", "garlic", "onion", "tomato", "cheese", "rice",
	"oil", "vinegar", "lemon", "lime", "parsley", "basil", "oregano",
	"chicken", "beef", "pork", "fish", "salmon", "shrimp", "bacon",
	"pasta", "bread", "potato", "carrot", "celery", "spinach",
)

var bulletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[\x{25A2}\x{25A1}\x{25A0}\x{2610}\x{2611}\x{2612}\x{2713}\x{2714}\x{2715}\x{2716}\x{2717}\x{2718}]\s*`),
	regexp.MustCompile(`^\s*[•◦▪▫⦿⦾○●]\s*`),
	regexp.MustCompile(`^\s*[*+\-–—]\s*`),
	regexp.MustCompile(`^\s*\d+[.)\-]\s*`),
}

var measurementUnits = []string{
	"cup", "cups", "c", "c.",
	"tablespoon", "tablespoons", "tbsp", "tbs", "T", "Tbsp", "Tbs",
	"teaspoon", "teaspoons", "tsp", "t", "Tsp",
	"fluid ounce", "fluid ounces", "fl oz", "fl. oz.", "fl oz.", "fl.oz.",
	"pint", "pints", "pt",
	"quart", "quarts", "qt",
	"gallon", "gallons", "gal",
	"milliliter", "milliliters", "millilitre", "millilitres", "ml", "mL",
	"liter", "liters", "litre", "litres", "l", "L",
	"ounce", "ounces", "oz", "oz.",
	"pound", "pounds", "lb", "lbs", "lb.", "lbs.",
	"gram", "grams", "g", "g.",
	"kilogram", "kilograms", "kg", "kilo", "kilos",
	"clove", "cloves", "sprig", "sprigs",
	"bunch", "bunches", "head", "heads",
	"stalk", "stalks", "rib", "ribs",
	"slice", "slices", "piece", "pieces",
	"leaf", "leaves", "stem", "stems",
	"can", "cans", "jar", "jars",
	"box", "boxes", "package", "packages", "pkg",
	"bag", "bags", "container", "containers",
	"carton", "cartons", "bottle", "bottles",
	"pouch", "pouches", "tin", "tins",
}

var (
	measurementRe        *regexp.Regexp
	trailingMeasurement  *regexp.Regexp
	ofQuantityRe         = regexp.MustCompile(`(?i)^[a-zA-Z\s]+\s+of\s+\d+\s+`)
	parentheticalRe      = regexp.MustCompile(`\([^)]*\)`)
	bracketedRe          = regexp.MustCompile(`\[[^\]]*\]`)
	separatorRe          = regexp.MustCompile(`,|\s+[\-–—]\s+`)
	eachPrefixRe         = regexp.MustCompile(`(?i)^each[\s:]+`)
	suchAsRe             = regexp.MustCompile(`(?i)\s+such\s+as\s+`)
	orSplitRe            = regexp.MustCompile(`(?i)\s+or\s+`)
	andSplitRe           = regexp.MustCompile(`(?i)\s+and\s+`)
	headerMeasurementRe  = regexp.MustCompile(`(?i)\d+[\s\-]*(/\d+)?\s*(cups?|tbsp?|tsp?|oz|lbs?|g|kg)`)
	forThePrefixRe       = regexp.MustCompile(`(?i)^for\s+the\s+`)
	forPrefixRe          = regexp.MustCompile(`(?i)^for\s+`)
	trailingPhraseRes    []*regexp.Regexp
	brandRes             []*regexp.Regexp
	genericHeaderStrings = map[string]struct{}{
		"ingredients": {}, "you will need": {}, "you'll need": {},
		"what you need": {}, "shopping list": {}, "supplies": {}, "grocery list": {},
		"directions": {}, "instructions": {}, "steps": {}, "method": {}, "preparation": {},
	}
)

func init() {
	units := make([]string, len(measurementUnits))
	copy(units, measurementUnits)
	sort.Slice(units, func(i, j int) bool { return len(units[i]) > len(units[j]) })
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	unitsPattern := strings.Join(quoted, "|")

	const qty = `[\d\s/.\-+~¼½¾⅓⅔⅛⅜⅝⅞]+`
	measurementRe = regexp.MustCompile(`(?i)^` + qty + `\s*(\([^)]*\))?\s*(` + unitsPattern + `)?\.?\s+(to\s+` + qty + `\s*(` + unitsPattern + `)?\.?\s*)?`)
	trailingMeasurement = regexp.MustCompile(`(?i)\s+[\d\s/.\-]+\s*(` + unitsPattern + `)\s*$`)

	for _, suffix := range []string{
		`\s+plus\s+.*$`, `\s+for\s+.*$`, `\s+to\s+taste.*$`, `\s+as\s+needed.*$`,
		`\s+by\s+hand.*$`, `\s+with\s+.*$`, `\s+omit\s+.*$`,
		`[.]\s*See\s+Note.*$`, `\s+See\s+Note.*$`,
	} {
		trailingPhraseRes = append(trailingPhraseRes, regexp.MustCompile(`(?i)`+suffix))
	}
	for _, brand := range brandNames {
		brandRes = append(brandRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(brand)+`\b`))
	}
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// ParseRecipeText splits pasted recipe text into structured ingredient
// lines, tracking section headers and skipping generic ones.
func ParseRecipeText(text string) []ParsedIngredient {
	var out []ParsedIngredient
	section := ""
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// "Ingredients:" style headers carry no section name, so they
		// must win over the section-header match.
		if isGenericHeader(line) {
			continue
		}
		if isSectionHeader(line) {
			section = extractSectionName(line)
			continue
		}
		if parsed, ok := parseIngredientLine(line); ok {
			parsed.Section = section
			out = append(out, parsed)
		}
	}
	return out
}

func parseIngredientLine(line string) (ParsedIngredient, bool) {
	cleaned := stripBullets(line)
	if cleaned == "" {
		return ParsedIngredient{}, false
	}
	optional := strings.Contains(strings.ToLower(cleaned), "optional")

	var ingredientText string
	if loc := measurementRe.FindStringIndex(cleaned); loc != nil && loc[1] > 0 {
		ingredientText = strings.TrimSpace(cleaned[loc[1]:])
		ingredientText = trailingMeasurement.ReplaceAllString(ingredientText, "")
	} else if loc := ofQuantityRe.FindStringIndex(cleaned); loc != nil {
		ingredientText = strings.TrimSpace(cleaned[loc[1]:])
	} else {
		ingredientText = cleaned
	}

	name := cleanIngredientName(ingredientText)
	if len(name) < 2 {
		return ParsedIngredient{}, false
	}
	return ParsedIngredient{
		Original:   line,
		Name:       name,
		Optional:   optional,
		Confidence: assessConfidence(name),
	}, true
}

func stripBullets(text string) string {
	cleaned := text
	for _, re := range bulletPatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

func cleanIngredientName(text string) string {
	cleaned := parentheticalRe.ReplaceAllString(text, "")
	cleaned = bracketedRe.ReplaceAllString(cleaned, "")

	// Comma- or dash-separated trailing clauses are usually prep
	// ("artichokes, drained"). Keep only clauses that still carry a
	// real product word.
	if separatorRe.MatchString(cleaned) {
		var kept []string
		for _, part := range separatorRe.Split(cleaned, -1) {
			part = strings.TrimSpace(part)
			for _, w := range strings.Fields(part) {
				lw := strings.ToLower(w)
				if _, isPrep := prepWords[lw]; isPrep {
					continue
				}
				if _, isQuality := qualityWords[lw]; isQuality {
					continue
				}
				kept = append(kept, part)
				break
			}
		}
		cleaned = strings.Join(kept, " ")
	}

	cleaned = eachPrefixRe.ReplaceAllString(cleaned, "")

	if loc := suchAsRe.FindStringIndex(cleaned); loc != nil {
		cleaned = cleaned[:loc[0]]
	}

	cleaned = pickOrAlternative(cleaned)

	if andSplitRe.MatchString(cleaned) {
		parts := andSplitRe.Split(cleaned, -1)
		if len(strings.Fields(parts[0])) <= 3 {
			cleaned = parts[0]
		}
	}

	for _, re := range trailingPhraseRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	for _, re := range brandRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}

	cleaned = dropPrepWords(cleaned)
	cleaned = dropDescriptors(cleaned)

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.Trim(cleaned, ".,;:- ")
}

// pickOrAlternative resolves "X or Y" by preferring the side with
// fewer descriptor and prep words; ties go to the longer side.
func pickOrAlternative(text string) string {
	if !orSplitRe.MatchString(text) {
		return text
	}
	parts := orSplitRe.Split(text, -1)
	first, last := parts[0], parts[len(parts)-1]

	junk := func(s string) int {
		n := 0
		for _, w := range strings.Fields(s) {
			lw := strings.Trim(strings.ToLower(w), ".,;:-")
			if _, ok := sizeWords[lw]; ok {
				n++
				continue
			}
			if _, ok := colorWords[lw]; ok {
				n++
				continue
			}
			if _, ok := qualityWords[lw]; ok {
				n++
				continue
			}
			if _, ok := prepWords[lw]; ok {
				n++
			}
		}
		return n
	}

	firstJunk, lastJunk := junk(first), junk(last)
	switch {
	case lastJunk < firstJunk:
		return last
	case firstJunk < lastJunk:
		return first
	case len(strings.Fields(first)) >= len(strings.Fields(last)):
		return first
	default:
		return last
	}
}

func dropPrepWords(text string) string {
	words := strings.Fields(text)
	if len(words) <= 1 {
		return text
	}
	var filtered []string
	firstLower := strings.Trim(strings.ToLower(words[0]), ".,;:")
	if _, ok := productDescriptors[firstLower]; ok {
		filtered = append(filtered, words[0])
	} else if _, isPrep := prepWords[firstLower]; !isPrep {
		filtered = append(filtered, words[0])
	}
	for _, w := range words[1:] {
		lw := strings.Trim(strings.ToLower(w), ".,;:")
		if lw == "" {
			continue
		}
		if _, isPrep := prepWords[lw]; isPrep {
			continue
		}
		filtered = append(filtered, w)
	}
	return strings.Join(filtered, " ")
}

func dropDescriptors(text string) string {
	words := strings.Fields(text)
	var filtered []string
	for i, w := range words {
		lw := strings.Trim(strings.ToLower(w), ".,;:")
		if _, isColor := colorWords[lw]; isColor {
			next := ""
			if i+1 < len(words) {
				next = strings.Trim(strings.ToLower(words[i+1]), ".,;:")
			}
			if _, removable := colorRemovableBefore[next]; removable {
				continue
			}
			filtered = append(filtered, w)
			continue
		}
		if _, isSize := sizeWords[lw]; isSize {
			continue
		}
		if _, isQuality := qualityWords[lw]; isQuality {
			continue
		}
		filtered = append(filtered, w)
	}
	return strings.Join(filtered, " ")
}

func isSectionHeader(line string) bool {
	if !strings.HasSuffix(line, ":") || len(line) > 50 {
		return false
	}
	return !headerMeasurementRe.MatchString(line)
}

func extractSectionName(line string) string {
	cleaned := strings.TrimSpace(strings.TrimRight(line, ":"))
	cleaned = forThePrefixRe.ReplaceAllString(cleaned, "")
	cleaned = forPrefixRe.ReplaceAllString(cleaned, "")
	words := strings.Fields(strings.ToLower(cleaned))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isGenericHeader(line string) bool {
	normalized := strings.TrimRight(strings.ToLower(strings.TrimSpace(line)), ":")
	_, ok := genericHeaderStrings[normalized]
	return ok
}

func assessConfidence(name string) Confidence {
	if len(name) < 2 {
		return ConfidenceLow
	}
	if _, ok := commonSingleIngredients[strings.ToLower(name)]; ok {
		return ConfidenceHigh
	}
	wordCount := len(strings.Fields(name))
	if wordCount >= 2 && wordCount <= 3 {
		return ConfidenceHigh
	}
	if wordCount >= 4 || len(name) < 3 {
		return ConfidenceLow
	}
	return ConfidenceMedium
}
