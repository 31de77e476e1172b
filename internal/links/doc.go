// Package links finds the downloadable annex links on the source page.
//
// The package has three parts:
//
//  1. Hrefs parses an HTML document and returns every href value in
//     document order
//  2. Rule keeps the values that name a target file (marker + extension)
//  3. Normalize makes relative hrefs absolute against the base origin
//
// Extractor ties them together with a PageSource that fetches the page.
//
// # Matching Rule
//
//	rule := links.NewRule([]string{"Anexo_I", "Anexo_II"}, []string{"pdf", "xls", "xlsx", "doc", "docx"}, false)
//
//	rule.IsTargetFile("Anexo_I_Rol.pdf") // true
//	rule.IsTargetFile("Anexo_III.pdf")   // false: the marker must end at a non-alphanumeric character
//	rule.IsTargetFile("Anexo_I.txt")     // false: extension not accepted
//
// Matching is case-sensitive unless the rule is built with
// caseInsensitive set.
//
// # Duplicates
//
// Repeated links are returned as many times as they appear unless
// Options.Deduplicate is set.
package links
