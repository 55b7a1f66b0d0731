package engine

import (
	"iter"
	"strconv"
	"strings"

	"github.com/aretw0/exprmig/pkg/domain"
)

// Site is one location of a document where an expression may appear.
// It is bound to the map that holds the value, so Set writes back in place.
type Site struct {
	Type domain.SiteType
	Path string

	parent map[string]any
	key    string
}

// Get returns the current value at the site.
func (s Site) Get() (any, bool) {
	v, ok := s.parent[s.key]
	return v, ok
}

// Set replaces the value at the site.
func (s Site) Set(v any) {
	s.parent[s.key] = v
}

type entrySite struct {
	path []string
	typ  domain.SiteType
}

type collectionSites struct {
	field string
	sites []entrySite
}

type scalarSite struct {
	field string
	typ   domain.SiteType
}

// Walk order: collections in this order, entries in array order, the sites of one
// entry in this order, then the scalars.
var collections = []collectionSites{
	{domain.FieldActive, []entrySite{
		{[]string{domain.FieldExpression}, domain.SiteActiveExpression},
		{[]string{domain.FieldEntityName}, domain.SiteActiveEntityName},
		{[]string{domain.FieldReverse, domain.FieldExpression}, domain.SiteActiveReverseExpression},
	}},
	{domain.FieldAttributes, []entrySite{
		{[]string{domain.FieldExpression}, domain.SiteAttributeExpression},
		{[]string{domain.FieldEntityName}, domain.SiteAttributeEntityName},
		{[]string{domain.FieldReverse, domain.FieldExpression}, domain.SiteAttributeReverseExpression},
	}},
	{domain.FieldCommands, []entrySite{
		{[]string{domain.FieldExpression}, domain.SiteCommandExpression},
	}},
}

var scalars = []scalarSite{
	{domain.FieldEndpoint, domain.SiteEndpoint},
	{domain.FieldEntityNameExp, domain.SiteEntityNameExp},
	{domain.FieldExplicitAttrs, domain.SiteExplicitAttrs},
}

// Locate yields every present site of doc in deterministic walk order.
// Missing parents, missing keys and entries that are not objects are skipped.
func Locate(doc domain.Document) iter.Seq[Site] {
	return func(yield func(Site) bool) {
		for _, c := range collections {
			entries, ok := doc[c.field].([]any)
			if !ok {
				continue
			}
			for i, e := range entries {
				entry, ok := e.(map[string]any)
				if !ok {
					continue
				}
				for _, es := range c.sites {
					parent, ok := descend(entry, es.path[:len(es.path)-1])
					if !ok {
						continue
					}
					key := es.path[len(es.path)-1]
					if _, ok := parent[key]; !ok {
						continue
					}
					site := Site{
						Type:   es.typ,
						Path:   c.field + "[" + strconv.Itoa(i) + "]." + strings.Join(es.path, "."),
						parent: parent,
						key:    key,
					}
					if !yield(site) {
						return
					}
				}
			}
		}

		for _, s := range scalars {
			if _, ok := doc[s.field]; !ok {
				continue
			}
			if !yield(Site{Type: s.typ, Path: s.field, parent: doc, key: s.field}) {
				return
			}
		}
	}
}

func descend(m map[string]any, path []string) (map[string]any, bool) {
	for _, key := range path {
		next, ok := m[key].(map[string]any)
		if !ok {
			return nil, false
		}
		m = next
	}
	return m, true
}

// siteFields returns the dotted query path of every site type, in walk order.
func siteFields() []string {
	var fields []string
	for _, c := range collections {
		for _, es := range c.sites {
			fields = append(fields, c.field+"."+strings.Join(es.path, "."))
		}
	}
	for _, s := range scalars {
		fields = append(fields, s.field)
	}
	return fields
}
