package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Finder locates descendants of a selection. An empty result means "no match".
type Finder func(*goquery.Selection) *goquery.Selection

// Cascade is an ordered list of finders. The first finder returning a
// non-empty selection wins; later finders are not evaluated.
type Cascade []Finder

// All returns every element matched by the first successful finder, or an
// empty selection when none of them match.
func (c Cascade) All(s *goquery.Selection) *goquery.Selection {
	for _, find := range c {
		if found := find(s); found != nil && found.Length() > 0 {
			return found
		}
	}
	return s.Slice(0, 0)
}

// First is All narrowed to its first element
func (c Cascade) First(s *goquery.Selection) *goquery.Selection {
	return c.All(s).First()
}

// ByClass matches descendant tags by class the way class-keyed lookups do
// on this page: a single class must be one of the element's class tokens,
// a space-separated value must equal the whole class attribute.
func ByClass(tag, class string) Finder {
	return func(s *goquery.Selection) *goquery.Selection {
		return s.Find(tag).FilterFunction(func(_ int, el *goquery.Selection) bool {
			return classMatches(el, class)
		})
	}
}

// BySelector matches descendants with a CSS selector
func BySelector(selector string) Finder {
	return func(s *goquery.Selection) *goquery.Selection {
		return s.Find(selector)
	}
}

func classMatches(el *goquery.Selection, class string) bool {
	attr, ok := el.Attr("class")
	if !ok {
		return false
	}
	if strings.ContainsAny(class, " \t\n") {
		return attr == class
	}
	for _, token := range strings.Fields(attr) {
		if token == class {
			return true
		}
	}
	return false
}

// Texter reads text from an element. The boolean reports whether the
// strategy applied (the element it needs exists), not whether text is empty.
type Texter func(*goquery.Selection) (string, bool)

// ChildText reads the first descendant matching selector
func ChildText(selector string) Texter {
	return func(s *goquery.Selection) (string, bool) {
		child := s.Find(selector).First()
		if child.Length() == 0 {
			return "", false
		}
		return strings.TrimSpace(child.Text()), true
	}
}

// OwnText reads the element's full text
func OwnText() Texter {
	return func(s *goquery.Selection) (string, bool) {
		if s == nil || s.Length() == 0 {
			return "", false
		}
		return strings.TrimSpace(s.Text()), true
	}
}

// TextOf evaluates texters in order against s and falls back to def
func TextOf(s *goquery.Selection, def string, texters ...Texter) string {
	if s == nil || s.Length() == 0 {
		return def
	}
	for _, read := range texters {
		if text, ok := read(s); ok {
			return text
		}
	}
	return def
}
