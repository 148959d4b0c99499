package assemble

// MaxPrice is the top of the unified price ladder.
const MaxPrice = 1000

// Prices returns n question prices rising around maxPrice/2. Multiples of
// ten questions get an even ladder from the base step up.
func Prices(n, maxPrice int) []int {
	if n <= 0 {
		return nil
	}
	base := maxPrice / (((n + 9) / 10) * 10)
	out := make([]int, 0, n)
	if n%10 == 0 {
		for i := 1; i <= n; i++ {
			out = append(out, i*base)
		}
		return out
	}
	half := maxPrice / 2
	for i := n / 2; i > 0; i-- {
		out = append(out, half-i*base)
	}
	if n%2 == 1 {
		out = append(out, half)
	}
	for i := 1; i <= n/2; i++ {
		out = append(out, half+i*base)
	}
	return out
}
