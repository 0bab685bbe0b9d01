// Package oracle implements the classification, naming and cleanup
// oracles on top of a generic LLMService.
//
// Model output is treated as untrusted text: replies are stripped of code
// fences and surrounding chatter before JSON decoding, and anything that
// still fails to decode is reported as domain.ErrOracleResponse.
package oracle
