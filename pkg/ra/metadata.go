// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package ra

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/jllopis/kairos-ocf/pkg/errors"
)

const (
	// APIVersion is the resource agent API version the metadata conforms to.
	APIVersion = "1.0"

	doctype = `<!DOCTYPE resource-agent SYSTEM "ra-api-1.dtd">`
)

// Info is the agent level data of a metadata document.
type Info struct {
	Name      string
	Version   string
	ShortDesc string
	LongDesc  string
}

// ResourceAgentNode is the root of a metadata document.
type ResourceAgentNode struct {
	XMLName    xml.Name       `xml:"resource-agent"`
	Name       string         `xml:"name,attr"`
	Version    string         `xml:"version,attr,omitempty"`
	APIVersion string         `xml:"version"`
	LongDesc   DescNode       `xml:"longdesc"`
	ShortDesc  DescNode       `xml:"shortdesc"`
	Parameters ParametersNode `xml:"parameters"`
	Actions    ActionsNode    `xml:"actions"`
}

// DescNode is a longdesc or shortdesc element.
type DescNode struct {
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

// MarshalXML writes the text without escaping newlines, so multi-line
// descriptions stay readable.
func (n DescNode) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "lang"}, Value: n.Lang})
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := e.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// ParametersNode always renders, even without parameters.
type ParametersNode struct {
	Items []ParameterNode `xml:"parameter"`
}

// ParameterNode describes one parameter.
type ParameterNode struct {
	Name      string      `xml:"name,attr"`
	Unique    string      `xml:"unique,attr"`
	Required  string      `xml:"required,attr,omitempty"`
	LongDesc  DescNode    `xml:"longdesc"`
	ShortDesc DescNode    `xml:"shortdesc"`
	Content   ContentNode `xml:"content"`
}

// ContentNode carries the type and optional default of a parameter.
type ContentNode struct {
	Type    string  `xml:"type,attr"`
	Default *string `xml:"default,attr,omitempty"`
}

// ActionsNode holds one element per action variant.
type ActionsNode struct {
	Items []ActionNode `xml:"action"`
}

// ActionNode describes one action variant.
type ActionNode struct {
	Name       string `xml:"name,attr"`
	Timeout    string `xml:"timeout,attr"`
	Interval   string `xml:"interval,attr,omitempty"`
	StartDelay string `xml:"start-delay,attr,omitempty"`
	Depth      string `xml:"depth,attr,omitempty"`
	Role       string `xml:"role,attr,omitempty"`
}

func english(text string) DescNode {
	return DescNode{Lang: "en", Text: text}
}

func (p *ParameterSpec) node() ParameterNode {
	n := ParameterNode{
		Name:      p.name,
		Unique:    "0",
		LongDesc:  english(p.longdesc),
		ShortDesc: english(p.shortdesc),
		Content:   ContentNode{Type: string(p.content)},
	}
	if p.unique {
		n.Unique = "1"
	}
	if p.required {
		n.Required = "1"
	} else if p.def != nil {
		def := *p.def
		n.Content.Default = &def
	}
	return n
}

// nodes unrolls the variants into sibling elements, in declaration order.
func (a *ActionSpec) nodes() []ActionNode {
	out := make([]ActionNode, 0, len(a.variants))
	for _, v := range a.variants {
		n := ActionNode{
			Name:    a.name,
			Timeout: strconv.Itoa(v.timeout),
			Role:    string(v.role),
		}
		if i, ok := v.Interval(); ok {
			n.Interval = strconv.Itoa(i)
		}
		if s, ok := v.StartDelay(); ok {
			n.StartDelay = strconv.Itoa(s)
		}
		if dp, ok := v.Depth(); ok {
			n.Depth = strconv.Itoa(dp)
		}
		out = append(out, n)
	}
	return out
}

// BuildMetadata returns the document tree for d.
func BuildMetadata(d *Descriptor, info Info) (*ResourceAgentNode, error) {
	if info.ShortDesc == "" && info.LongDesc == "" {
		return nil, errors.Newf(errors.CodeMissingDescription,
			"agent %s has no description", info.Name)
	}
	if info.Name == "" {
		return nil, errors.New(errors.CodeInternal, "agent name is required for metadata", nil)
	}
	root := &ResourceAgentNode{
		Name:       info.Name,
		Version:    info.Version,
		APIVersion: APIVersion,
		LongDesc:   english(info.LongDesc),
		ShortDesc:  english(info.ShortDesc),
	}
	for _, p := range d.Parameters() {
		root.Parameters.Items = append(root.Parameters.Items, p.node())
	}
	for _, a := range d.Actions() {
		root.Actions.Items = append(root.Actions.Items, a.nodes()...)
	}
	return root, nil
}

// RenderMetadata returns the complete XML document: declaration, doctype
// and the indented resource-agent element.
func RenderMetadata(d *Descriptor, info Info) ([]byte, error) {
	root, err := BuildMetadata(d, info)
	if err != nil {
		return nil, err
	}
	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "encode metadata", err)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(doctype)
	buf.WriteByte('\n')
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteMetadata renders the document and writes it to w. Nothing is
// written when rendering fails.
func WriteMetadata(w io.Writer, d *Descriptor, info Info) error {
	doc, err := RenderMetadata(d, info)
	if err != nil {
		return err
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ParseMetadata decodes a metadata document.
func ParseMetadata(r io.Reader) (*ResourceAgentNode, error) {
	var root ResourceAgentNode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &root, nil
}
