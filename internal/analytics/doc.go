// Package analytics turns raw entity snapshots (users, departments, email
// logs, training status) into dashboard view-models.
//
// Every function in this package is pure: the same inputs and the same
// reference instant always produce the same output, including the ordering of
// departments and users, which follows the input order. Nothing here is
// cached between calls; a refresh cycle rebuilds the whole ViewModel from one
// Snapshot so that all derived structures agree with each other.
package analytics
