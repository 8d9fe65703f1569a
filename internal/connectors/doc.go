// Package connectors provides implementations of the Connector interface
// for document sources. Each connector knows how to fetch documents
// from a specific source type.
//
// Connectors are registered with the ConnectorFactory at startup.
package connectors
