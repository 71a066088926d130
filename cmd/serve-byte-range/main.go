// Command serve-byte-range serves the objects of a bucket over HTTP with full range request support.
//
// Configuration is read from SBR_* environment variables, see [rangeserver.Environment].
package main

import "github.com/julik/serve-byte-range/rangeserver"

func main() {
	rangeserver.NewApp().Run()
}
