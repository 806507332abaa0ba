/*
Package observability exposes Prometheus metrics for tool execution and dice
rolling. Collectors are registered on a caller-supplied registerer, never on
the global default registry.
*/
package observability
