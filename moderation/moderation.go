// Package moderation implements the local keyword heuristics run before a
// forum question is accepted: topic gating, prohibited-content detection,
// draft validation, and advisory tag suggestion.
package moderation

import (
	"regexp"
	"sort"
	"strings"
)

// Reasons returned when a draft is rejected.
const (
	ReasonOffTopic   = "off_topic"
	ReasonProhibited = "prohibited_content"
)

var educationKeywords = []string{
	// Loans & Finance
	"loan", "student loan", "education loan", "emi", "interest rate", "bank", "nbfc",
	"collateral", "co-applicant", "cosigner", "sanction", "disbursement", "moratorium",
	"repayment", "itr", "form16", "salary", "income", "credit score", "cibil",
	"axis", "sbi", "hdfc", "avanse", "credila", "incred", "prodigy", "mpower",
	"idfc", "auxilo",
	// Education & Admissions
	"university", "college", "admission", "scholarship", "degree", "masters", "phd",
	"bachelors", "mba", "ms", "btech", "gpa", "transcript", "application", "deadline",
	"acceptance", "waitlist", "enrollment", "tuition", "fees", "grant", "fellowship",
	"assistantship", "stipend", "funding", "professor", "advisor", "campus", "admit",
	"admits", "lakhs", "lender",
	// Study Abroad
	"abroad", "international", "studyabroad", "usa", "uk", "canada", "australia",
	"germany", "ireland", "europe", "overseas",
	// Visa & Immigration
	"visa", "f1", "immigration", "i20", "sevis", "ds160", "embassy", "consulate",
	"opt", "cpt", "h1b", "resident",
	// Tests
	"gre", "gmat", "sat", "toefl", "ielts", "pte", "duolingo", "sop", "lor",
	"recommendation", "eligibility",
	// Career (academic context)
	"internship", "placement", "on campus", "off campus", "career", "work permit",
}

var offTopicKeywords = []string{
	// Food & Cooking
	"recipe", "ingredient", "ingredients", "cook", "cooking", "biryani", "pizza",
	"burger", "pasta", "noodles", "food", "dish", "meal", "restaurant", "chef",
	"bake", "fry", "boil", "spice", "massala", "curry", "snack", "breakfast",
	"lunch", "dinner", "kitchen", "tomato", "onion", "garlic", "rice", "roti",
	"bread", "soup", "salad", "dessert", "cake", "sweet", "chocolate",
	// Entertainment
	"movie", "film", "actor", "actress", "celebrity", "bollywood", "hollywood",
	"song", "music", "album", "concert", "anime", "manga", "show", "series",
	"netflix", "youtube", "tiktok", "reel", "streaming",
	// Sports
	"cricket", "football", "soccer", "basketball", "tennis", "ipl", "fifa",
	"match", "tournament", "wicket", "athlete", "olympic", "score",
	// Politics & Religion
	"election", "vote", "politician", "politics", "religion", "god", "temple",
	"church", "mosque", "prayer", "astrology", "horoscope", "zodiac",
	// Lifestyle
	"fitness", "gym", "workout", "diet", "weight loss", "beauty", "makeup",
	"skincare", "fashion", "dating", "relationship", "love", "breakup",
	// Random / Trivial
	"joke", "meme", "funny", "prank", "gossip", "rumour", "pet", "dog", "cat",
	"animal", "plant", "garden", "tourism", "hotel", "vacation", "holiday",
	"shopping", "discount", "crypto", "bitcoin", "nft", "gaming", "game",
}

var bannedWords = []string{
	"bomb", "attack", "drugs", "porn", "sex", "murder", "kill", "suicide",
	"weapon", "terror", "illegal", "fraud", "scam", "hack", "explosive", "abuse",
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"are": true, "was": true, "were": true, "will": true, "would": true, "could": true,
	"should": true, "have": true, "has": true, "had": true, "from": true, "your": true,
	"you": true, "what": true, "how": true, "why": true, "when": true, "where": true,
	"who": true, "which": true, "get": true, "make": true, "give": true, "tell": true,
	"want": true, "need": true, "our": true, "please": true,
}

// CategorySlugMap maps display names to canonical hub slugs. Unrecognized
// categories normalize to "general".
var CategorySlugMap = map[string]string{
	"Education Loans":          "eligibility",
	"Visa Process":             "visa",
	"Universities":             "universities",
	"Scholarship":              "scholarships",
	"Courses":                  "courses",
	"GRE / GMAT":               "gre",
	"Exams":                    "exams",
	"IELTS / TOEFL":            "gre",
	"Housing & Accommodation":  "accommodation",
	"Part-time Jobs & Careers": "jobs",
	"General Discussion":       "general",
}

var (
	nonWordRe   = regexp.MustCompile(`[\W_]+`)
	multiSpace  = regexp.MustCompile(`\s+`)
	urlOrHTMLRe = regexp.MustCompile(`(?i)(https?://|www\.|<[^>]+>)`)
)

// NormalizeText lowercases and collapses anything that is not a word character
// into single spaces.
func NormalizeText(s string) string {
	t := strings.ToLower(s)
	t = nonWordRe.ReplaceAllString(t, " ")
	t = multiSpace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// CategorySlug resolves a display category (or an already-canonical slug) to
// its canonical hub slug.
func CategorySlug(category string) string {
	if slug, ok := CategorySlugMap[category]; ok {
		return slug
	}
	for _, slug := range CategorySlugMap {
		if slug == category {
			return slug
		}
	}
	return "general"
}

// ValidateTitle checks composer title rules: non-empty, at least 10 chars, no
// URLs or HTML. Returns a user-facing message on failure.
func ValidateTitle(title string) (bool, string) {
	t := strings.TrimSpace(title)
	if t == "" {
		return false, "Please enter a title for your question."
	}
	if len(t) < 10 {
		return false, "Title is too short, at least 10 characters are required."
	}
	if urlOrHTMLRe.MatchString(t) {
		return false, "Please avoid links or HTML in the title."
	}
	return true, ""
}

// ValidateContent checks composer description rules: non-empty, at least 20
// chars, no URLs or HTML.
func ValidateContent(content string) (bool, string) {
	c := strings.TrimSpace(content)
	if c == "" {
		return false, "Please describe your question."
	}
	if len(c) < 20 {
		return false, "Description is too short, at least 20 characters are required."
	}
	if urlOrHTMLRe.MatchString(c) {
		return false, "Please avoid links or HTML in the description."
	}
	return true, ""
}

// ContainsBannedWords reports whether the text contains prohibited content.
func ContainsBannedWords(text string) bool {
	t := NormalizeText(text)
	for _, b := range bannedWords {
		if strings.Contains(t, b) {
			return true
		}
	}
	return false
}

// IsOffTopic reports whether the text matches the explicit off-topic list
// (food, sports, entertainment, ...).
func IsOffTopic(text string) bool {
	t := NormalizeText(text)
	for _, k := range offTopicKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// IsTopical reports whether the text relates to education/loans. Short or
// vague questions need two matching education keywords; longer ones need one.
func IsTopical(text string) bool {
	t := NormalizeText(text)
	matches := 0
	for _, k := range educationKeywords {
		if strings.Contains(t, k) {
			matches++
		}
	}
	wordCount := 0
	for _, w := range strings.Fields(t) {
		if len(w) > 2 {
			wordCount++
		}
	}
	required := 1
	if wordCount < 6 {
		required = 2
	}
	return matches >= required
}

// Result is the outcome of the keyword moderation pass.
type Result struct {
	Allowed bool
	Reason  string
}

// ModerateContent runs the three-stage keyword check over the combined
// title+content text: off-topic hard block, prohibited content, then the
// topicality requirement.
func ModerateContent(text string) Result {
	combined := NormalizeText(text)

	if IsOffTopic(combined) {
		return Result{Allowed: false, Reason: ReasonOffTopic}
	}
	if ContainsBannedWords(combined) {
		return Result{Allowed: false, Reason: ReasonProhibited}
	}
	if !IsTopical(combined) {
		return Result{Allowed: false, Reason: ReasonOffTopic}
	}
	return Result{Allowed: true}
}

// ExtractKeywords returns the most frequent non-stopword tokens of the text,
// most frequent first, capped at limit.
func ExtractKeywords(text string, limit int) []string {
	t := NormalizeText(text)
	freq := map[string]int{}
	order := []string{}
	for _, w := range strings.Fields(t) {
		if len(w) <= 2 || stopwords[w] {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

var tagCanon = []struct {
	re  *regexp.Regexp
	tag string
}{
	{regexp.MustCompile(`^(ielts|toefl|pte|gre|sop)$`), ""}, // keep word as-is
	{regexp.MustCompile(`^(loan|loans)$`), "loan"},
	{regexp.MustCompile(`^(education|study|studying|studyabroad)$`), "education"},
	{regexp.MustCompile(`^(visa|immigration)$`), "visa"},
	{regexp.MustCompile(`^(scholarship|scholarships|grant)$`), "scholarship"},
	{regexp.MustCompile(`^(admission|apply|application)$`), "admission"},
	{regexp.MustCompile(`^(bank|banks)$`), "bank"},
	{regexp.MustCompile(`^(salary|salary_slip|salaryslip)$`), "salary"},
	{regexp.MustCompile(`^(itr|form16|tax)$`), "itr"},
}

// MapKeywordsToTags canonicalizes extracted keywords into tag names, capped
// at six.
func MapKeywordsToTags(words []string) []string {
	seen := map[string]bool{}
	tags := []string{}
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	for _, w := range words {
		if w == "" {
			continue
		}
		matched := false
		for _, c := range tagCanon {
			if c.re.MatchString(w) {
				if c.tag == "" {
					add(w)
				} else {
					add(c.tag)
				}
				matched = true
				break
			}
		}
		if !matched && len(w) <= 20 {
			add(w)
		}
	}
	if len(tags) > 6 {
		tags = tags[:6]
	}
	return tags
}

// SuggestTags builds advisory tag suggestions for a draft: the baseline
// "education"/"loan" pair plus canonicalized keywords, capped at five.
// Suggestions never block submission.
func SuggestTags(text string) []string {
	if len(strings.TrimSpace(text)) <= 5 {
		return nil
	}
	tags := []string{"education", "loan"}
	seen := map[string]bool{"education": true, "loan": true}
	for _, t := range MapKeywordsToTags(ExtractKeywords(text, 8)) {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	if len(tags) > 5 {
		tags = tags[:5]
	}
	return tags
}
