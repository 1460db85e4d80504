// Package lexicon rewrites staged voice-line records with a word replacement
// map.
//
// Matching is whole-word and case-insensitive; replacement text is inserted
// verbatim. Every "sentence" field is rewritten, at the top level and inside
// nested objects and arrays. A record is written back only when at least one
// replacement happened.
package lexicon
