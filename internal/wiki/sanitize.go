package wiki

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wikiracer/wikirace/internal/model"
)

// DataWikiPage is the attribute carrying a rewritten link's target title.
// The frontend click handler reads it to drive navigation without a real
// page load.
const DataWikiPage = "data-wiki-page"

// ContainerClass wraps every delivered article fragment.
const ContainerClass = "wikipedia-content"

// navboxRe extracts navbox fragments from raw markup before any tree
// mutation. The extraction is a backup: if the removal passes strip the
// navboxes as collateral, they are re-appended afterwards so the game
// keeps their links.
var navboxRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*navbox[^"]*".*?</div>`)

// wikiLinkRes match hrefs that point at an article: absolute,
// protocol-relative, or root-relative /wiki/ paths.
var wikiLinkRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:https?://(?:\w+\.)*wikipedia\.org)?/wiki/(.+)$`),
	regexp.MustCompile(`(?i)^//(?:\w+\.)*wikipedia\.org/wiki/(.+)$`),
}

// tempOpenSectionRe matches Wikipedia's mobile section-state markers,
// which have no meaning outside the original page context.
var tempOpenSectionRe = regexp.MustCompile(`(?i)mfTempOpenSection`)

// externalLinksRe matches the "External links" section heading.
var externalLinksRe = regexp.MustCompile(`(?i)external\s+links`)

// elements removed outright: non-visual or disruptive in an embedded context.
var removedElements = map[string]bool{
	"script": true,
	"audio":  true,
	"video":  true,
	"iframe": true,
}

// class tokens that mark maintenance/notice boxes. These boxes carry no
// in-article links worth playing and clutter the board.
var removedClasses = map[string]bool{
	"ambox":   true,
	"dmbox":   true,
	"tmbox":   true,
	"cmbox":   true,
	"fmbox":   true,
	"imbox":   true,
	"ombox":   true,
	"hatnote": true,
	"dablink": true,
	"rellink": true,
}

// collapsed-state class tokens stripped so every link is visible.
var collapsedClasses = map[string]bool{
	"mw-collapsed": true,
	"collapsed":    true,
	"autocollapse": true,
}

// Sanitized is the result of running the pipeline over raw article HTML.
type Sanitized struct {
	// Content is the transformed HTML fragment, not yet wrapped in the
	// container element.
	Content string

	// Navboxes holds the pre-extraction navbox fragments, re-appended
	// by the caller if the transformation lost them.
	Navboxes []string
}

// Sanitize transforms raw Wikipedia article markup into game-playable
// HTML. The passes run in a fixed order; link rewriting, for example,
// must not see hrefs inside notice boxes that the removal pass already
// dropped.
func Sanitize(rawHTML string) (*Sanitized, error) {
	navboxes := navboxRe.FindAllString(rawHTML, -1)

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	roots, err := html.ParseFragment(strings.NewReader(rawHTML), body)
	if err != nil {
		return nil, err
	}

	for _, pass := range sanitizePasses {
		for _, root := range roots {
			pass.fn(root)
		}
	}

	var sb strings.Builder
	for _, root := range roots {
		if err := html.Render(&sb, root); err != nil {
			return nil, err
		}
	}

	return &Sanitized{Content: sb.String(), Navboxes: navboxes}, nil
}

// sanitizePass is one ordered transformation over a parsed article tree.
// Mirrors the step structure used elsewhere: each pass has a name so a
// failure or a debug trace can say which rule ran.
type sanitizePass struct {
	name string
	fn   func(root *html.Node)
}

var sanitizePasses = []sanitizePass{
	{name: "remove-disruptive-elements", fn: removeDisruptive},
	{name: "scrub-attributes-and-images", fn: scrubAttributes},
	{name: "rewrite-links", fn: rewriteLinks},
	{name: "expand-collapsed-sections", fn: expandCollapsed},
	{name: "replace-collapse-toggles", fn: replaceToggles},
	{name: "tag-external-links-heading", fn: tagExternalLinks},
}

// removeDisruptive drops scripts, media embeds, and Wikipedia's own
// maintenance/notice boxes.
func removeDisruptive(root *html.Node) {
	var doomed []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if removedElements[n.Data] {
			doomed = append(doomed, n)
			return
		}
		class := getAttr(n, "class")
		if class != "" {
			for _, token := range strings.Fields(class) {
				if removedClasses[token] {
					doomed = append(doomed, n)
					return
				}
			}
			if strings.Contains(class, "mbox-") || strings.Contains(class, "notice") {
				doomed = append(doomed, n)
				return
			}
		}
		if getAttr(n, "role") == "note" {
			doomed = append(doomed, n)
		}
	})
	for _, n := range doomed {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// scrubAttributes strips inline event handlers and mobile section
// markers from every element, and normalizes image sources.
func scrubAttributes(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}

		kept := n.Attr[:0]
		for _, attr := range n.Attr {
			if strings.HasPrefix(attr.Key, "on") || tempOpenSectionRe.MatchString(attr.Val) {
				continue
			}
			kept = append(kept, attr)
		}
		n.Attr = kept

		if n.Data == "img" {
			fixImage(n)
		}
	})
}

// fixImage rewrites an image source to an absolute HTTPS URL and marks
// it lazy-loading.
func fixImage(n *html.Node) {
	src := getAttr(n, "src")
	if src == "" {
		return
	}

	switch {
	case strings.HasPrefix(src, "//"):
		src = "https:" + src
	case strings.HasPrefix(src, "/"):
		src = "https://en.wikipedia.org" + src
	case !strings.HasPrefix(src, "http"):
		src = "https://upload.wikimedia.org" + src
	}

	setAttr(n, "src", src)
	setAttr(n, "loading", "lazy")
	setAttr(n, "decoding", "async")
}

// rewriteLinks turns article links into game moves and disarms
// everything else.
//
// Anchors that already carry data-wiki-page are left untouched, which
// makes the pass idempotent: re-sanitizing sanitized output changes
// nothing.
func rewriteLinks(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		if getAttr(n, DataWikiPage) != "" {
			return
		}
		href, ok := lookupAttr(n, "href")
		if !ok {
			return
		}

		// Same-page anchors are not navigable moves.
		if strings.HasPrefix(href, "#") {
			removeAttr(n, "href")
			appendStyle(n, "text-decoration", "none")
			return
		}

		pageName, isArticle := matchArticleLink(href)
		if !isArticle {
			// External link: the game forbids leaving Wikipedia.
			removeAttr(n, "href")
			appendStyle(n, "text-decoration", "none")
			return
		}

		if strings.Contains(pageName, ":") &&
			!strings.HasPrefix(pageName, "Portal:") &&
			!strings.HasPrefix(pageName, "List_of_") {
			// Non-allow-listed namespace: not a playable move.
			removeAttr(n, "href")
			appendStyle(n, "text-decoration", "none")
			return
		}

		setAttr(n, "href", "#")
		setAttr(n, DataWikiPage, model.NormalizeTitle(pageName))
		appendStyle(n, "cursor", "pointer")
	})
}

// matchArticleLink extracts the decoded article name from an href, or
// reports that the href does not point at an article.
func matchArticleLink(href string) (string, bool) {
	for _, re := range wikiLinkRes {
		if m := re.FindStringSubmatch(href); m != nil {
			name, err := url.PathUnescape(m[1])
			if err != nil {
				name = m[1]
			}
			return name, true
		}
	}
	return "", false
}

// expandCollapsed force-opens collapsible sections and navigation boxes
// so every link is clickable rather than hidden behind a toggle the game
// cannot operate.
func expandCollapsed(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if !hasAnyClass(n, "mw-collapsible", "navbox", "vertical-navbox") {
			return
		}

		dropClasses(n, collapsedClasses)
		clearDisplay(n)
		walk(n, func(inner *html.Node) {
			if inner.Type == html.ElementNode && hasAnyClass(inner, "mw-collapsible-content") {
				clearDisplay(inner)
			}
		})
	})
}

// replaceToggles swaps show/hide toggle anchors for an inert label.
func replaceToggles(root *html.Node) {
	var toggles []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasAnyClass(n, "mw-collapsible-text") {
			toggles = append(toggles, n)
		}
	})

	for _, toggle := range toggles {
		if toggle.Parent == nil {
			continue
		}
		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr:     []html.Attribute{{Key: "class", Val: "navbox-toggle"}},
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: "(links)"})
		toggle.Parent.InsertBefore(span, toggle)
		toggle.Parent.RemoveChild(toggle)
	}
}

// tagExternalLinks marks "External links" headings so the UI can hide
// the section. The section's links were already disarmed by the link
// pass, so tagging rather than removing preserves visual fidelity.
func tagExternalLinks(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "h2" {
			return
		}
		if !externalLinksRe.MatchString(innerText(n)) {
			return
		}
		if !hasAnyClass(n, "ext-links") {
			setAttr(n, "class", strings.TrimSpace(getAttr(n, "class")+" ext-links"))
		}
		setAttr(n, "data-ext-links", "")
	})
}

// HasGameLink reports whether sanitized content contains a playable link
// to the given article title. Used for hop-by-hop path validation.
func HasGameLink(content, title string) bool {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	roots, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return false
	}

	found := false
	for _, root := range roots {
		walk(root, func(n *html.Node) {
			if found || n.Type != html.ElementNode {
				return
			}
			if target := getAttr(n, DataWikiPage); target != "" && model.TitlesEqual(target, title) {
				found = true
			}
		})
		if found {
			break
		}
	}
	return found
}

// restoreNavboxes re-appends extracted navbox fragments when the
// transformation lost them. Defensive repair, not a routine step.
func restoreNavboxes(content string, navboxes []string) string {
	if len(navboxes) == 0 || strings.Contains(content, `class="navbox"`) {
		return content
	}
	return content + "\n<div class=\"navboxes-fallback\">" + strings.Join(navboxes, "\n") + "</div>"
}

// wrapContainer wraps a fragment in the delivery container, unless it is
// already wrapped (re-wrapping cached output would nest containers).
func wrapContainer(content string) string {
	if strings.HasPrefix(content, `<div class="`+ContainerClass+`">`) {
		return content
	}
	return `<div class="` + ContainerClass + `">` + content + `</div>`
}

// innerText concatenates the text content of a node's subtree.
func innerText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// walk applies fn to n and every descendant, depth-first.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

// lookupAttr retrieves an attribute value and whether it exists.
func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// setAttr sets or replaces an attribute.
func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// removeAttr deletes an attribute if present.
func removeAttr(n *html.Node, key string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// hasAnyClass reports whether the node's class list contains any of the
// given tokens.
func hasAnyClass(n *html.Node, classes ...string) bool {
	for _, token := range strings.Fields(getAttr(n, "class")) {
		for _, want := range classes {
			if token == want {
				return true
			}
		}
	}
	return false
}

// dropClasses removes the given class tokens, deleting the attribute
// when nothing remains.
func dropClasses(n *html.Node, drop map[string]bool) {
	tokens := strings.Fields(getAttr(n, "class"))
	kept := tokens[:0]
	for _, token := range tokens {
		if !drop[token] {
			kept = append(kept, token)
		}
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// clearDisplay removes display declarations from an inline style so a
// collapsed section becomes visible. Empty styles are deleted.
func clearDisplay(n *html.Node) {
	style, ok := lookupAttr(n, "style")
	if !ok {
		return
	}

	var kept []string
	for _, decl := range strings.Split(style, ";") {
		name, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(name), "display") {
			continue
		}
		if strings.TrimSpace(decl) != "" {
			kept = append(kept, strings.TrimSpace(decl))
		}
	}

	if len(kept) == 0 {
		removeAttr(n, "style")
		return
	}
	setAttr(n, "style", strings.Join(kept, "; "))
}

// appendStyle adds a declaration to the inline style unless the property
// is already declared.
func appendStyle(n *html.Node, property, value string) {
	style := getAttr(n, "style")
	if strings.Contains(strings.ToLower(style), property+":") {
		return
	}
	decl := property + ":" + value
	if style == "" {
		setAttr(n, "style", decl)
		return
	}
	setAttr(n, "style", strings.TrimRight(style, "; ")+"; "+decl)
}
