// Package naming provides consistent naming functions for wizard-built resources.
//
// Worker pools are named {cluster}-mp-{index} where index is the pool's
// current position in the collection. Names are derived on read and never
// stored, so removing a pool renumbers the ones after it.
package naming
