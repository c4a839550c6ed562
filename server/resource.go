package server

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ResourceContent is the payload returned by resources/read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64-encoded binary data
}

// ResourceHandler produces content for a concrete URI. params holds the
// values extracted from the URI template's placeholders.
type ResourceHandler func(ctx context.Context, uri string, params map[string]string) (*ResourceContent, error)

// Resource is a URI-addressed capability. The URI may be a template
// with {placeholder} segments; resources/read matches concrete URIs
// against it. A resource without a handler serves a static payload
// derived from its metadata.
type Resource struct {
	uri         string
	name        string
	description string
	mimeType    string
	handler     ResourceHandler

	uriRegex   *regexp.Regexp
	paramNames []string
}

// ResourceInfo is the metadata a resource exposes through
// resources/list.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// ResourceBuilder accumulates a resource definition; Build produces the
// immutable Resource that gets registered.
type ResourceBuilder struct {
	resource *Resource
}

// NewResource starts building a resource with the given URI template.
func NewResource(uri string) *ResourceBuilder {
	return &ResourceBuilder{
		resource: &Resource{uri: uri},
	}
}

// Name sets an optional human-readable name.
func (b *ResourceBuilder) Name(name string) *ResourceBuilder {
	b.resource.name = name
	return b
}

// Description sets the resource description.
func (b *ResourceBuilder) Description(desc string) *ResourceBuilder {
	b.resource.description = desc
	return b
}

// MimeType sets the MIME type of the resource content.
func (b *ResourceBuilder) MimeType(mimeType string) *ResourceBuilder {
	b.resource.mimeType = mimeType
	return b
}

// Handler sets the resource handler. Optional: a handler-less resource
// serves its metadata as a static payload.
func (b *ResourceBuilder) Handler(fn ResourceHandler) *ResourceBuilder {
	b.resource.handler = fn
	return b
}

// Build compiles the URI template and finalizes the resource.
func (b *ResourceBuilder) Build() (*Resource, error) {
	r := b.resource
	if r.uri == "" {
		return nil, fmt.Errorf("resource URI is required")
	}

	re, names, err := compileURITemplate(r.uri)
	if err != nil {
		return nil, fmt.Errorf("resource %q: %w", r.uri, err)
	}
	r.uriRegex = re
	r.paramNames = names
	return r, nil
}

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// compileURITemplate turns "file://{path}" into a regexp with one
// capture group per placeholder.
func compileURITemplate(template string) (*regexp.Regexp, []string, error) {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}

	pattern := regexp.QuoteMeta(template)
	pattern = strings.ReplaceAll(pattern, `\{`, "{")
	pattern = strings.ReplaceAll(pattern, `\}`, "}")
	pattern = placeholderPattern.ReplaceAllString(pattern, `([^/]+)`)

	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return nil, nil, err
	}
	return re, names, nil
}

// URI returns the resource's URI template.
func (r *Resource) URI() string {
	return r.uri
}

func (r *Resource) info() ResourceInfo {
	return ResourceInfo{
		URI:         r.uri,
		Name:        r.name,
		Description: r.description,
		MimeType:    r.mimeType,
	}
}

// match reports whether uri matches the template and returns the
// extracted placeholder values.
func (r *Resource) match(uri string) (map[string]string, bool) {
	m := r.uriRegex.FindStringSubmatch(uri)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(r.paramNames))
	for i, name := range r.paramNames {
		params[name] = m[i+1]
	}
	return params, true
}

// read resolves uri against the template and produces content. Without
// a handler the payload is static, built from the resource's metadata.
func (r *Resource) read(ctx context.Context, uri string) (*ResourceContent, error) {
	params, ok := r.match(uri)
	if !ok {
		return nil, fmt.Errorf("URI %q does not match template %q", uri, r.uri)
	}

	if r.handler == nil {
		return &ResourceContent{
			URI:      uri,
			MimeType: r.mimeType,
		}, nil
	}
	return r.handler(ctx, uri, params)
}
