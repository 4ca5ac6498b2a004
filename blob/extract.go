package blob

import (
	"image"
	"math"
	"sort"

	"github.com/LdDl/blobtrack/mot"
)

// Candidate is a single connected foreground component found in an image.
type Candidate struct {
	Centroid mot.Point
	// Equivalent diameter: the diameter of the circle with the same area
	Diameter float64
	Area     float64
}

// CandidateExtractor finds blob candidates in a grayscale image. The
// pipeline's convention is dark blobs on a light background: a pixel belongs
// to the foreground when its intensity is strictly below the threshold level.
type CandidateExtractor interface {
	Extract(img *image.Gray, params Params) ([]Candidate, error)
}

// ComponentExtractor is a pure-Go candidate extractor. It sweeps the
// configured intensity range, labels dark 8-connected components at each
// level, filters them by area/circularity/convexity/inertia and merges
// near-identical candidates across levels.
type ComponentExtractor struct{}

func (ComponentExtractor) Extract(img *image.Gray, params Params) ([]Candidate, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var raw []Candidate
	for level := int(params.MinThreshold); level <= int(params.MaxThreshold); level += int(params.ThresholdStep) {
		for _, comp := range darkComponents(img, uint8(level)) {
			m := measureComponent(comp)
			if !params.Area.contains(m.area) ||
				!params.Circularity.contains(m.circularity) ||
				!params.Convexity.contains(m.convexity) ||
				!params.Inertia.contains(m.inertia) {
				continue
			}
			raw = append(raw, Candidate{
				Centroid: m.centroid,
				Diameter: 2 * math.Sqrt(m.area/math.Pi),
				Area:     m.area,
			})
		}
	}
	return mergeCandidates(raw, params.MinDistance), nil
}

// darkComponents labels 8-connected components of pixels strictly below the
// threshold level. Components are returned in scan order.
func darkComponents(img *image.Gray, level uint8) [][]image.Point {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	visited := make([]bool, w*h)
	var comps [][]image.Point

	var queue []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || img.GrayAt(b.Min.X+x, b.Min.Y+y).Y >= level {
				continue
			}
			visited[y*w+x] = true
			queue = queue[:0]
			queue = append(queue, image.Pt(x, y))
			var comp []image.Point
			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				comp = append(comp, image.Pt(b.Min.X+p.X, b.Min.Y+p.Y))
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h || visited[ny*w+nx] {
							continue
						}
						if img.GrayAt(b.Min.X+nx, b.Min.Y+ny).Y < level {
							visited[ny*w+nx] = true
							queue = append(queue, image.Pt(nx, ny))
						}
					}
				}
			}
			comps = append(comps, comp)
		}
	}
	return comps
}

type componentShape struct {
	centroid    mot.Point
	area        float64
	circularity float64
	convexity   float64
	inertia     float64
}

// measureComponent computes area, centroid and the three shape descriptors
// of a component. The perimeter is the cell-boundary length, so circularity
// values are comparable between components but lower than contour-based ones.
func measureComponent(points []image.Point) componentShape {
	area := float64(len(points))

	sumX, sumY := 0.0, 0.0
	inComp := make(map[image.Point]struct{}, len(points))
	for _, p := range points {
		sumX += float64(p.X)
		sumY += float64(p.Y)
		inComp[p] = struct{}{}
	}
	cx := sumX / area
	cy := sumY / area

	perimeter := 0.0
	for _, p := range points {
		for _, n := range []image.Point{
			{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1},
		} {
			if _, ok := inComp[n]; !ok {
				perimeter++
			}
		}
	}
	circularity := 1.0
	if perimeter > 0 {
		circularity = 4 * math.Pi * area / (perimeter * perimeter)
		if circularity > 1 {
			circularity = 1
		}
	}

	convexity := 1.0
	if hullArea := convexHullArea(points); hullArea > 1e-9 {
		convexity = area / hullArea
		if convexity > 1 {
			convexity = 1
		}
	}

	mu20, mu02, mu11 := 0.0, 0.0, 0.0
	for _, p := range points {
		dx := float64(p.X) - cx
		dy := float64(p.Y) - cy
		mu20 += dx * dx
		mu02 += dy * dy
		mu11 += dx * dy
	}
	inertia := 1.0
	common := math.Sqrt((mu20-mu02)*(mu20-mu02) + 4*mu11*mu11)
	lMax := (mu20 + mu02 + common) / 2
	lMin := (mu20 + mu02 - common) / 2
	if lMax > 1e-9 {
		inertia = lMin / lMax
	}

	return componentShape{
		centroid:    mot.NewPoint(cx, cy),
		area:        area,
		circularity: circularity,
		convexity:   convexity,
		inertia:     inertia,
	}
}

// convexHullArea computes the area of the convex hull of pixel centers
// (Andrew's monotone chain + shoelace).
func convexHullArea(points []image.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	pts := make([]image.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var hull []image.Point
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	area := 0.0
	for i := 0; i < len(hull); i++ {
		j := (i + 1) % len(hull)
		area += float64(hull[i].X)*float64(hull[j].Y) - float64(hull[j].X)*float64(hull[i].Y)
	}
	return math.Abs(area) / 2
}

// mergeCandidates collapses candidates whose centroids fall within the merge
// radius into one averaged candidate. Assignment is greedy in input order,
// which keeps the result deterministic.
func mergeCandidates(raw []Candidate, minDistance float64) []Candidate {
	type cluster struct {
		sumX, sumY, sumD, sumA float64
		n                      float64
	}
	var clusters []*cluster
	for _, c := range raw {
		var home *cluster
		for _, cl := range clusters {
			mx, my := cl.sumX/cl.n, cl.sumY/cl.n
			if math.Hypot(c.Centroid.X-mx, c.Centroid.Y-my) <= minDistance {
				home = cl
				break
			}
		}
		if home == nil {
			home = &cluster{}
			clusters = append(clusters, home)
		}
		home.sumX += c.Centroid.X
		home.sumY += c.Centroid.Y
		home.sumD += c.Diameter
		home.sumA += c.Area
		home.n++
	}

	merged := make([]Candidate, 0, len(clusters))
	for _, cl := range clusters {
		merged = append(merged, Candidate{
			Centroid: mot.NewPoint(cl.sumX/cl.n, cl.sumY/cl.n),
			Diameter: cl.sumD / cl.n,
			Area:     cl.sumA / cl.n,
		})
	}
	return merged
}
