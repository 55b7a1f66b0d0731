/*
Package domain contains the core domain models of the expression migration engine.

It defines the documents read from an IoT agent registry, the occurrences of legacy
expressions found inside them, the structural filter used to select candidate documents,
and the errors the engine reports. This package is kept free of I/O and persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Document: A device or group configuration record, kept as a generic map so that a
    full-document replace never drops fields the engine does not know about.
  - Occurrence: One located instance of legacy syntax at a specific field of a document.
  - Filter: A store-agnostic predicate tree (And, Or, Regex, Equal, Exists).
  - LanguagePolicy: How the expressionLanguage tag is normalized.
*/
package domain
