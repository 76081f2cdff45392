// Package actions contains a small reference rule set built on the kernel:
// attack, move, end_turn and fortify. The rules exist to exercise suspension,
// scheduling and the built-in decisions; they are not a combat system.
package actions
