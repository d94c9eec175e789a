// Package labels holds the static emoji and category lookup tables used
// across subscription and investment views. The tables are plain read-only
// maps with a stable display order for form dropdowns.
package labels

// Code pairs a stored code with its display glyph or name.
type Code struct {
	Key   string
	Value string
}

// SubscriptionEmojis lists selectable subscription emoji codes in display order.
var SubscriptionEmojis = []Code{
	{"gym", "🏋️"},
	{"netflix", "🎬"},
	{"youtube", "📺"},
	{"book", "📚"},
	{"ebook", "📖"},
	{"music", "🎵"},
	{"game", "🎮"},
	{"coffee", "☕"},
	{"swim", "🏊"},
	{"pilates", "🧘"},
	{"language", "🗣️"},
	{"default", "📌"},
}

// InvestmentEmojis lists selectable investment emoji codes in display order.
var InvestmentEmojis = []Code{
	{"ereader", "📱"},
	{"tablet", "📲"},
	{"laptop", "💻"},
	{"annual_pass", "🎫"},
	{"equipment", "🔧"},
	{"camera", "📷"},
	{"headphone", "🎧"},
	{"default", "📦"},
}

// InvestmentCategories lists investment category codes in display order.
var InvestmentCategories = []Code{
	{"E_READER", "이북 리더기"},
	{"ANNUAL_PASS", "연간 이용권"},
	{"EQUIPMENT", "장비"},
	{"OTHER", "기타"},
}

var (
	subscriptionEmojiByCode = indexByKey(SubscriptionEmojis)
	investmentEmojiByCode   = indexByKey(InvestmentEmojis)
	categoryByCode          = indexByKey(InvestmentCategories)
)

func indexByKey(codes []Code) map[string]string {
	m := make(map[string]string, len(codes))
	for _, c := range codes {
		m[c.Key] = c.Value
	}
	return m
}

// Emoji returns the glyph for a subscription emoji code, falling back to the
// default pin when the code is unknown.
func Emoji(code string) string {
	if g, ok := subscriptionEmojiByCode[code]; ok {
		return g
	}
	return subscriptionEmojiByCode["default"]
}

// InvestmentEmoji returns the glyph for an investment emoji code.
func InvestmentEmoji(code string) string {
	if g, ok := investmentEmojiByCode[code]; ok {
		return g
	}
	return investmentEmojiByCode["default"]
}

// CategoryName returns the display name for an investment category code.
func CategoryName(code string) string {
	if n, ok := categoryByCode[code]; ok {
		return n
	}
	return categoryByCode["OTHER"]
}
