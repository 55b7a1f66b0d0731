package domain

// Document field names inspected or written by the engine.
const (
	FieldID                 = "_id"
	FieldService            = "service"
	FieldSubservice         = "subservice"
	FieldDeviceID           = "id"
	FieldEntityType         = "type"
	FieldActive             = "active"
	FieldAttributes         = "attributes"
	FieldCommands           = "commands"
	FieldExpression         = "expression"
	FieldEntityName         = "entity_name"
	FieldReverse            = "reverse"
	FieldEndpoint           = "endpoint"
	FieldEntityNameExp      = "entityNameExp"
	FieldExplicitAttrs      = "explicitAttrs"
	FieldExpressionLanguage = "expressionLanguage"
)

// ExpressionLanguageJexl is the tag written by the jexl and jexlall policies.
const ExpressionLanguageJexl = "jexl"

// SiteType labels the kind of location an occurrence was found at.
// The values are part of the occurrence artifact and must stay stable.
type SiteType string

const (
	SiteActiveExpression           SiteType = "active.expression"
	SiteActiveEntityName           SiteType = "active.entity_name"
	SiteActiveReverseExpression    SiteType = "active.reverse.expression"
	SiteAttributeExpression        SiteType = "attribute.expression"
	SiteAttributeEntityName        SiteType = "attribute.entity_name"
	SiteAttributeReverseExpression SiteType = "attribute.reverse.expression"
	SiteCommandExpression          SiteType = "command.expression"
	SiteEndpoint                   SiteType = "endpoint"
	SiteEntityNameExp              SiteType = "entityNameExp"
	SiteExplicitAttrs              SiteType = "explicitAttrs"
)
