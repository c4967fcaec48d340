/*
Package session serializes access to stored conversations.

A Manager wraps a ports.ConversationStore with per-conversation locks (and an
optional ports.DistributedLocker for multi-replica deployments) so that a turn's
load, process and save happen as one unit.
*/
package session
