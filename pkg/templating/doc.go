/*
Package templating renders generated chord progressions with text/template.

A TemplateManager holds a set of built-in output formats (plain, numbered,
notes, names and verbose) plus any *.tmpl files found in the configured
template directory. Templates receive a ProgressionData value and can use a
small library of chord functions such as join, names and notes. When a corpus
store is attached, the corpus function loads a stored progression by name.
*/
package templating
