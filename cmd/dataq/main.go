// dataq runs the interactive analysis workflow either as a blocking
// terminal session (`dataq run`) or as an HTTP + websocket API
// (`dataq serve`).
package main

func main() {
	Execute()
}
