package domain

import "context"

// DocumentEvent identifies a document visited or persisted by the engine.
type DocumentEvent struct {
	DocumentID string
	Service    string
	Subservice string
}

// RewriteEvent describes one site rewritten in memory.
type RewriteEvent struct {
	DocumentID  string
	Type        SiteType
	Path        string
	Expression  string
	Replacement string
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnDocument         func(context.Context, *DocumentEvent)
	OnOccurrence       func(context.Context, *Occurrence)
	OnRewrite          func(context.Context, *RewriteEvent)
	OnReplace          func(context.Context, *DocumentEvent)
	OnResolutionError  func(context.Context, *ResolutionError)
	OnPersistenceError func(context.Context, *PersistenceError)
}
