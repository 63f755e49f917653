// Package language normalizes the language codes reported by speech
// recognizers and renders them as English display names.
package language
