// Package markup wraps a parsed XML payload as a tree of nodes that carry
// leading text, tail text and ordered children.
package markup

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"
)

// ParseError 标记无法解析的标记负载
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("markup parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Tree 拥有整个文档树，所有 Node 句柄都通过它修改
type Tree struct {
	doc  *etree.Document
	root *Node
}

// Node 是树中单个元素的句柄
type Node struct {
	el *etree.Element
}

// Parse 解析 XML 负载
func Parse(data []byte) (*Tree, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	doc.WriteSettings.CanonicalAttrVal = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Err: err}
	}

	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Err: fmt.Errorf("document has no root element")}
	}
	normalize(root)

	return &Tree{doc: doc, root: &Node{el: root}}, nil
}

// normalize 删除根元素内的注释和处理指令，并合并因此相邻的字符数据，
// 使 Text/Tail 读到的范围与 SetText/SetTail 替换的范围一致
func normalize(el *etree.Element) {
	for i := 0; i < len(el.Child); {
		switch tok := el.Child[i].(type) {
		case *etree.Comment, *etree.ProcInst:
			el.RemoveChildAt(i)
			continue
		case *etree.CharData:
			if i > 0 && !tok.IsCData() {
				if prev, ok := el.Child[i-1].(*etree.CharData); ok && !prev.IsCData() {
					merged := etree.NewCharData(prev.Data + tok.Data)
					el.RemoveChildAt(i)
					el.RemoveChildAt(i - 1)
					el.InsertChildAt(i-1, merged)
					continue
				}
			}
		case *etree.Element:
			normalize(tok)
		}
		i++
	}
}

// Root 返回根节点
func (t *Tree) Root() *Node {
	return t.root
}

// Walk 以先序深度优先遍历每个节点恰好一次
func (t *Tree) Walk(fn func(n *Node) error) error {
	return walk(t.root, fn)
}

func walk(n *Node, fn func(n *Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, child := range n.Children() {
		if err := walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Bytes 序列化整棵树，保留 XML 声明等非元素标记
func (t *Tree) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := t.doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize markup: %w", err)
	}
	return buf.Bytes(), nil
}

// Tag 返回带命名空间前缀的标签名
func (n *Node) Tag() string {
	return n.el.FullTag()
}

// Text 返回开始标签之后、第一个子元素之前的文本
func (n *Node) Text() string {
	return n.el.Text()
}

// SetText 替换节点文本
func (n *Node) SetText(text string) {
	n.el.SetText(text)
}

// Tail 返回结束标签之后、下一个兄弟元素之前的文本
func (n *Node) Tail() string {
	return n.el.Tail()
}

// SetTail 替换节点尾部文本
func (n *Node) SetTail(text string) {
	n.el.SetTail(text)
}

// Children 按文档顺序返回子节点
func (n *Node) Children() []*Node {
	elems := n.el.ChildElements()
	children := make([]*Node, len(elems))
	for i, el := range elems {
		children[i] = &Node{el: el}
	}
	return children
}
