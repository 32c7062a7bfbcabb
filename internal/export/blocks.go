package export

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Kind int

const (
	Paragraph Kind = iota
	Heading
	ListItem
)

// Run is a stretch of text with one inline style.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// Block is one vertically stacked unit of the rendered document.
type Block struct {
	Kind   Kind
	Level  int    // heading level 1-6
	Marker string // list marker, "•" or "3."
	Depth  int    // list nesting, 1 for a top-level item
	Runs   []Run
}

// Text joins the runs of b.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type list struct {
	ordered bool
	n       int
}

type walker struct {
	blocks []Block
	cur    *Block
	lists  []list

	bold, italic, underline int
}

// Blocks sanitizes content and flattens it into blocks. Elements outside
// the allowed set are descended into so their text is kept.
func Blocks(content string) ([]Block, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(Sanitize(content)), body)
	if err != nil {
		return nil, err
	}

	w := &walker{}
	for _, n := range nodes {
		w.walk(n)
	}
	w.flush()
	return w.blocks, nil
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.flush()
		level, _ := strconv.Atoi(n.Data[1:])
		w.cur = &Block{Kind: Heading, Level: level}
		w.children(n)
		w.flush()

	case atom.P:
		if w.cur != nil && w.cur.Kind == ListItem {
			w.space()
			w.children(n)
			return
		}
		w.flush()
		w.cur = &Block{Kind: Paragraph}
		w.children(n)
		w.flush()

	case atom.Ul, atom.Ol:
		w.flush()
		w.lists = append(w.lists, list{ordered: n.DataAtom == atom.Ol})
		w.children(n)
		w.lists = w.lists[:len(w.lists)-1]

	case atom.Li:
		w.flush()
		marker, depth := "•", 1
		if len(w.lists) > 0 {
			top := &w.lists[len(w.lists)-1]
			top.n++
			if top.ordered {
				marker = strconv.Itoa(top.n) + "."
			}
			depth = len(w.lists)
		}
		w.cur = &Block{Kind: ListItem, Marker: marker, Depth: depth}
		w.children(n)
		w.flush()

	case atom.Br:
		if w.cur != nil {
			w.cur.Runs = append(w.cur.Runs, Run{Text: "\n"})
		}

	case atom.Strong, atom.B:
		w.bold++
		w.children(n)
		w.bold--

	case atom.Em, atom.I:
		w.italic++
		w.children(n)
		w.italic--

	case atom.U:
		w.underline++
		w.children(n)
		w.underline--

	default:
		w.children(n)
	}
}

func (w *walker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) text(s string) {
	s = collapse(s)
	if s == "" {
		return
	}
	if w.cur == nil {
		if strings.TrimSpace(s) == "" {
			return
		}
		w.cur = &Block{Kind: Paragraph}
	}
	w.cur.Runs = append(w.cur.Runs, Run{
		Text:      s,
		Bold:      w.bold > 0,
		Italic:    w.italic > 0,
		Underline: w.underline > 0,
	})
}

func (w *walker) space() {
	if w.cur != nil && len(w.cur.Runs) > 0 {
		w.cur.Runs = append(w.cur.Runs, Run{Text: " "})
	}
}

// flush closes the current block, dropping it when it holds no text.
func (w *walker) flush() {
	b := w.cur
	w.cur = nil
	if b == nil || strings.TrimSpace(b.Text()) == "" {
		return
	}
	b.Runs[0].Text = strings.TrimLeft(b.Runs[0].Text, " ")
	last := len(b.Runs) - 1
	b.Runs[last].Text = strings.TrimRight(b.Runs[last].Text, " ")
	w.blocks = append(w.blocks, *b)
}

func collapse(s string) string {
	if s == "" {
		return ""
	}
	lead := isSpace(s[0])
	trail := isSpace(s[len(s)-1])
	out := strings.Join(strings.Fields(s), " ")
	if out == "" {
		return " "
	}
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
