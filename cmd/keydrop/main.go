package main

func main() {
	Execute(MustInitialize())
}
