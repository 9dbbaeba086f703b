package segmenting

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNotEnoughSamples = errors.New("not enough customers for the number of clusters")

// KMeans agrupa amostras em K clusters usando inicialização k-means++.
// Com a mesma semente o resultado é sempre o mesmo.
type KMeans struct {
	K             int
	Seed          int64
	NInit         int
	MaxIterations int
	Tolerance     float64
}

// KMeansResult guarda o melhor agrupamento entre as inicializações
type KMeansResult struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

func (km KMeans) Fit(samples [][]float64) (*KMeansResult, error) {
	if km.K < 1 || len(samples) < km.K {
		return nil, ErrNotEnoughSamples
	}

	nInit := max(km.NInit, 1)
	maxIter := km.MaxIterations
	if maxIter < 1 {
		maxIter = 300
	}
	tol := km.Tolerance
	if tol <= 0 {
		tol = 1e-4
	}
	tol *= meanVariance(samples)

	rng := rand.New(rand.NewSource(km.Seed))

	var best *KMeansResult
	for run := 0; run < nInit; run++ {
		centroids := initPlusPlus(samples, km.K, rng)
		result := lloyd(samples, centroids, maxIter, tol)
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}

	return best, nil
}

// initPlusPlus escolhe o primeiro centro ao acaso e os demais com probabilidade proporcional a D²
func initPlusPlus(samples [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(samples[rng.Intn(len(samples))]))

	dist := make([]float64, len(samples))
	for i, s := range samples {
		dist[i] = squaredDistance(s, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(dist)

		next := rng.Intn(len(samples))
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}

		center := clone(samples[next])
		centroids = append(centroids, center)
		for i, s := range samples {
			dist[i] = math.Min(dist[i], squaredDistance(s, center))
		}
	}

	return centroids
}

func lloyd(samples [][]float64, centroids [][]float64, maxIter int, tol float64) *KMeansResult {
	k := len(centroids)
	dims := len(samples[0])
	labels := make([]int, len(samples))

	iterations := 0
	for iterations < maxIter {
		iterations++
		assign(samples, centroids, labels)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, s := range samples {
			floats.Add(next[labels[i]], s)
			counts[labels[i]]++
		}

		// Cluster vazio recebe o ponto mais distante do próprio centro
		relocated := make(map[int]bool)
		for c := range next {
			if counts[c] > 0 {
				continue
			}
			far := farthest(samples, centroids, labels, relocated)
			relocated[far] = true

			from := labels[far]
			if counts[from] > 1 {
				floats.Sub(next[from], samples[far])
				counts[from]--
				copy(next[c], samples[far])
				counts[c] = 1
				labels[far] = c
			}
		}

		for c := range next {
			if counts[c] == 0 {
				copy(next[c], centroids[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		shift := 0.0
		for c := range next {
			shift += squaredDistance(next[c], centroids[c])
		}
		centroids = next

		if shift <= tol {
			break
		}
	}

	inertia := assign(samples, centroids, labels)

	return &KMeansResult{
		Labels:     labels,
		Centroids:  centroids,
		Inertia:    inertia,
		Iterations: iterations,
	}
}

// assign associa cada amostra ao centro mais próximo e retorna a inércia
func assign(samples [][]float64, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, s := range samples {
		bestCluster, bestDist := 0, math.Inf(1)
		for c, center := range centroids {
			if d := squaredDistance(s, center); d < bestDist {
				bestCluster, bestDist = c, d
			}
		}
		labels[i] = bestCluster
		inertia += bestDist
	}
	return inertia
}

func farthest(samples [][]float64, centroids [][]float64, labels []int, skip map[int]bool) int {
	idx, maxDist := 0, -1.0
	for i, s := range samples {
		if skip[i] {
			continue
		}
		if d := squaredDistance(s, centroids[labels[i]]); d > maxDist {
			idx, maxDist = i, d
		}
	}
	return idx
}

func meanVariance(samples [][]float64) float64 {
	dims := len(samples[0])
	column := make([]float64, len(samples))

	total := 0.0
	for j := 0; j < dims; j++ {
		for i, s := range samples {
			column[i] = s[j]
		}
		_, std := stat.PopMeanStdDev(column, nil)
		total += std * std
	}
	return total / float64(dims)
}

func squaredDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
