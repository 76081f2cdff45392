/*
Package observability provides tools for monitoring the gambit kernel.

Both Metrics and LogHooks are plain domain.LifecycleHooks producers, so they can
be combined with domain.ComposeHooks and handed to the Kernel.
*/
package observability
