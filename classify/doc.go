// Package classify maps provider errors to a category, a severity and a
// list of human-actionable recovery suggestions.
//
// Remote providers rarely return structured error codes, so matching is
// keyword-substring based against an ordered rule table; the first
// matching category wins. Classification is a pure function: it never
// mutates shared state and an unrecognized error is still classified,
// as CategoryUnknown.
package classify
