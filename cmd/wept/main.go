// Command wept browses a WordPress/WooCommerce storefront over GraphQL and
// manages its cart session.
package main

import "github.com/alexwatever/wept/cmd/wept/cmd"

func main() {
	cmd.Execute()
}
