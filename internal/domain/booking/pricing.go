package booking

import "fmt"

// AllocateDiscount splits discount across seats. Every seat gets
// floor(discount/n); the remainder goes one paisa at a time to the first
// seats. A share never exceeds its seat's gross price: whatever a seat
// cannot absorb is split again, by the same rule, over the seats that
// still have room. The shares always sum to discount.
func AllocateDiscount(gross []int64, discount int64) ([]int64, error) {
	if discount < 0 {
		return nil, fmt.Errorf("discount cannot be negative")
	}
	var total int64
	for _, g := range gross {
		if g < 0 {
			return nil, fmt.Errorf("seat price cannot be negative")
		}
		total += g
	}
	if discount > total {
		return nil, fmt.Errorf("discount %d exceeds gross total %d", discount, total)
	}

	shares := make([]int64, len(gross))
	open := make([]int, 0, len(gross))
	for i, g := range gross {
		if g > 0 {
			open = append(open, i)
		}
	}

	remaining := discount
	for remaining > 0 && len(open) > 0 {
		n := int64(len(open))
		per, extra := remaining/n, remaining%n

		next := open[:0]
		for k, i := range open {
			want := per
			if int64(k) < extra {
				want++
			}
			give := min(want, gross[i]-shares[i])
			shares[i] += give
			remaining -= give
			if shares[i] < gross[i] {
				next = append(next, i)
			}
		}
		open = next
	}

	return shares, nil
}
