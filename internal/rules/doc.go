// Package rules holds the SEO rule catalogue and merges user overrides into
// it.
//
// A rule names a tag and an ordered list of conditions. The built-in rules
// are loaded once from an embedded YAML file; [Build] hands every caller its
// own copy with the overrides applied. Overrides can replace a rule's tag,
// replace its conditions wholesale, or add new rules. An override that cannot
// produce a complete rule is logged and skipped, while overrides that cannot
// be decoded at all fail with [ErrConfig].
package rules
