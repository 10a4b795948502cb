//go:generate go mod tidy
//go:generate go mod edit -replace=github.com/charmbracelet/bubbletea=github.com/tmc/bubbletea@wasm
//go:generate go mod edit -replace=github.com/atotto/clipboard=github.com/tmc/clipboard@wasm
//go:generate go mod tidy

//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" ./static/wasm_exec.js"
//go:generate env GOOS=js GOARCH=wasm go build -o static/maskfield.wasm ../maskfield-wasm
package main
