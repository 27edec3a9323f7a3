package contamination

const (
	cannyLowThreshold  = 50
	cannyHighThreshold = 150

	// tan(22.5°) in Q15 fixed point.
	tan22Q15 = 13573
)

// reflect101 maps an out-of-range index back inside [0, n) without repeating the edge.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func sobel(src gray) (dx, dy []int) {
	w, h := src.width, src.height
	dx = make([]int, w*h)
	dy = make([]int, w*h)
	for y := 0; y < h; y++ {
		ym := reflect101(y-1, h)
		yp := reflect101(y+1, h)
		for x := 0; x < w; x++ {
			xm := reflect101(x-1, w)
			xp := reflect101(x+1, w)

			tl, t, tr := int(src.at(xm, ym)), int(src.at(x, ym)), int(src.at(xp, ym))
			l, r := int(src.at(xm, y)), int(src.at(xp, y))
			bl, b, br := int(src.at(xm, yp)), int(src.at(x, yp)), int(src.at(xp, yp))

			dx[y*w+x] = (tr + 2*r + br) - (tl + 2*l + bl)
			dy[y*w+x] = (bl + 2*b + br) - (tl + 2*t + tr)
		}
	}
	return dx, dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// canny returns an edge mask using L1 gradient magnitude, non-maximum
// suppression and hysteresis between low and high.
func canny(src gray, low, high int) []bool {
	w, h := src.width, src.height
	dx, dy := sobel(src)

	mag := make([]int, w*h)
	for i := range mag {
		mag[i] = abs(dx[i]) + abs(dy[i])
	}
	magAt := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	stack := make([]int, 0, w*h/8)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			gx, gy := dx[i], dy[i]
			ax, ay := abs(gx), abs(gy)<<15
			tg22x := ax * tan22Q15

			var keep bool
			switch {
			case ay < tg22x:
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > tg22x+(ax<<16):
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (gx < 0) != (gy < 0) {
					s = -1
				}
				keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}
			if m > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := i%w, i/w
		for ny := cy - 1; ny <= cy+1; ny++ {
			for nx := cx - 1; nx <= cx+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	edges := make([]bool, w*h)
	for i, s := range state {
		edges[i] = s == strong
	}
	return edges
}

func density(edges []bool) float64 {
	if len(edges) == 0 {
		return 0
	}
	n := 0
	for _, e := range edges {
		if e {
			n++
		}
	}
	return float64(n) / float64(len(edges))
}
