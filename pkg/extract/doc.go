/*
Package extract turns free-text utterances into slot diffs.

Rules is a deterministic, regex based extractor that understands the slots of the
catalog domains, explicit "no preference" answers, corrections and affirmations.
Failback chains several extractors (for example an LLM extractor followed by Rules)
and returns the first successful result.
*/
package extract
