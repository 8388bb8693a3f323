// Package calendar turns free-text scheduling requests into confirmed
// events.
//
// Processor runs a gated prompt chain: classify the text, stop unless it
// is confidently a calendar event, extract the details and draft a
// confirmation. Validator runs two independent checks in parallel, one for
// calendar intent and one for prompt injection, and accepts a request only
// when both agree.
package calendar
