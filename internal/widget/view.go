package widget

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element ids and classes of the rendered message list.
const (
	MessagesID           = "chat-messages"
	TypingIndicatorID    = "typing-indicator"
	TypingIndicatorClass = "typing-indicator"
	MessageClass         = "message"
	MessageContentClass  = "message-content"
	typingDots           = 3
)

// View is the surface a Controller renders into.
type View interface {
	AppendMessage(turn Turn)
	AppendTypingIndicator()
	// RemoveTypingIndicator removes the first indicator, reporting whether there was one.
	RemoveTypingIndicator() bool
	ScrollToBottom()
	ClearInput()
}

// MessageList is an element tree equivalent to the widget's message container. Message text
// only ever becomes text nodes, so it is escaped on render and never parsed as markup.
type MessageList struct {
	mu        sync.Mutex
	root      *html.Node
	scrollTop int
	onChange  func()
}

func NewMessageList() *MessageList {
	return &MessageList{
		root: element(atom.Div, "", MessagesID),
	}
}

// OnChange registers fn to run after every mutation. fn runs with the list unlocked.
func (l *MessageList) OnChange(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

func (l *MessageList) AppendMessage(turn Turn) {
	l.mutate(func() {
		msg := element(atom.Div, MessageClass+" "+turn.Role, "")
		content := element(atom.Div, MessageContentClass, "")
		content.AppendChild(&html.Node{Type: html.TextNode, Data: turn.Content})
		msg.AppendChild(content)
		l.root.AppendChild(msg)
	})
}

// AppendTypingIndicator does not check for an existing indicator; two pending exchanges
// show two.
func (l *MessageList) AppendTypingIndicator() {
	l.mutate(func() {
		indicator := element(atom.Div, TypingIndicatorClass, TypingIndicatorID)
		for i := 0; i < typingDots; i++ {
			indicator.AppendChild(element(atom.Span, "", ""))
		}
		l.root.AppendChild(indicator)
	})
}

func (l *MessageList) RemoveTypingIndicator() bool {
	removed := false
	l.mutate(func() {
		for n := l.root.FirstChild; n != nil; n = n.NextSibling {
			if attr(n, "id") == TypingIndicatorID {
				l.root.RemoveChild(n)
				removed = true
				return
			}
		}
	})
	return removed
}

func (l *MessageList) ScrollToBottom() {
	l.mutate(func() {
		l.scrollTop = l.scrollHeightLocked()
	})
}

// ScrollTop is the index of the first visible child; ScrollHeight the number of children.
func (l *MessageList) ScrollTop() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scrollTop
}

func (l *MessageList) ScrollHeight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scrollHeightLocked()
}

// Item is a flattened child of the list, as a renderer needs it.
type Item struct {
	Typing bool
	Turn   Turn
}

// Items walks the rendered tree in order.
func (l *MessageList) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	var items []Item
	for n := l.root.FirstChild; n != nil; n = n.NextSibling {
		if attr(n, "id") == TypingIndicatorID {
			items = append(items, Item{Typing: true})
			continue
		}
		items = append(items, Item{Turn: Turn{Role: roleOf(n), Content: textOf(n)}})
	}
	return items
}

// TypingIndicators counts the indicators currently in the tree.
func (l *MessageList) TypingIndicators() int {
	count := 0
	for _, item := range l.Items() {
		if item.Typing {
			count++
		}
	}
	return count
}

// HTML serialises the tree.
func (l *MessageList) HTML() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sb strings.Builder
	if err := html.Render(&sb, l.root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (l *MessageList) mutate(fn func()) {
	l.mu.Lock()
	fn()
	notify := l.onChange
	l.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (l *MessageList) scrollHeightLocked() int {
	height := 0
	for n := l.root.FirstChild; n != nil; n = n.NextSibling {
		height++
	}
	return height
}

func element(a atom.Atom, class, id string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if id != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
	}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	return n
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func roleOf(n *html.Node) string {
	for _, class := range strings.Fields(attr(n, "class")) {
		if class != MessageClass {
			return class
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// InputField is the text box the user types into.
type InputField struct {
	mu    sync.Mutex
	value string
}

func (f *InputField) Set(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
}

func (f *InputField) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *InputField) Clear() {
	f.Set("")
}

// Page pairs a message list with its input field and satisfies View.
type Page struct {
	*MessageList
	Input *InputField
}

func NewPage() *Page {
	return &Page{
		MessageList: NewMessageList(),
		Input:       &InputField{},
	}
}

func (p *Page) ClearInput() {
	p.Input.Clear()
}
