// Package webhooks hosts the inbound processing pipeline: payload decoding,
// exclusion filtering, conversation resolution, and the move mutation, with
// each outcome mapped to a fixed response contract.
package webhooks
