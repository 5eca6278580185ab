package main

func add(a, b int) int { return a + b }

func sub(a, b int) int { return a - b }

func apply(f func(int, int) int, x int) int {
	if x > 0 {
		return f(x, x)
	}
	return 0
}

func main() {
	println(apply(add, 1) + apply(sub, 2))
}
