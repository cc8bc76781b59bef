// Command crash-sim draws crash points from a seeded stream and prints
// their distribution and the empirical return at a few cash-out targets.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/games"
)

func main() {
	server := flag.String("server", "arcade-server-seed", "server seed")
	client := flag.String("client", "arcade-client-seed", "client seed")
	nonce := flag.Uint64("nonce", 0, "starting nonce")
	rounds := flag.Int("rounds", 100000, "number of rounds to draw")
	edge := flag.Float64("edge", games.DefaultTuning().Crash.Edge, "crash edge factor")
	flag.Parse()

	if *rounds <= 0 {
		fmt.Fprintln(os.Stderr, "rounds must be positive")
		os.Exit(2)
	}

	src := engine.NewSeededSource(*server, *client, *nonce)
	points := make([]float64, *rounds)
	for i := range points {
		points[i] = games.CrashPoint(src.Float64(), *edge)
	}
	sort.Float64s(points)

	fmt.Printf("rounds=%d edge=%.4f\n", *rounds, *edge)
	fmt.Printf("median=%.2fx p90=%.2fx p99=%.2fx max=%.2fx\n",
		quantile(points, 0.5), quantile(points, 0.9), quantile(points, 0.99), points[len(points)-1])

	fmt.Println("\ntarget  reach%   return")
	for _, target := range []float64{1.01, 1.5, 2, 3, 5, 10, 100} {
		reached := len(points) - sort.SearchFloat64s(points, target)
		// a cash-out only pays when the target is strictly below the crash point
		for reached > 0 && points[len(points)-reached] == target {
			reached--
		}
		share := float64(reached) / float64(len(points))
		fmt.Printf("%6.2fx  %6.2f  %7.4f\n", target, share*100, share*target)
	}
}

func quantile(sorted []float64, q float64) float64 {
	i := int(q * float64(len(sorted)-1))
	return sorted[i]
}
