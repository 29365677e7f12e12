package main

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tamirms/lfsrindex"
	"github.com/tamirms/lfsrindex/internal/lfsr"
)

const benchSeedFlag = "bench-seed"

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure query latency against an index",
	Long: `Resolve a mix of states known to be in the index and pseudo-random states.
Known states are drawn from the configured polynomial set; the query order is
derived from murmur3 so runs with the same seed issue the same queries.`,
	Args: cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd.Flags(), queriesFlag, stepsFlag, benchSeedFlag)
	},
	RunE: benchFunc,
}

func init() {
	ff := benchCmd.Flags()
	ff.Int(queriesFlag, 1_000_000, "number of queries")
	ff.Int(stepsFlag, lfsr.Period, "states per channel the index was built with")
	ff.Uint32(benchSeedFlag, 0x1234, "murmur3 seed for query generation")
}

type benchQuery struct {
	state uint32
	known bool
}

// benchQueries derives n queries from murmur3 hashes of the query number.
// Even-hashed queries pick a known (channel, step); the rest use the hash as
// a state.
func benchQueries(seqs [][]uint32, n int, seed uint32) []benchQuery {
	queries := make([]benchQuery, n)
	var buf [8]byte
	for i := range queries {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		h1, h2 := murmur3.Sum128WithSeed(buf[:], seed)
		if h1&1 == 0 {
			seq := seqs[h2%uint64(len(seqs))]
			queries[i] = benchQuery{state: seq[(h2>>32)%uint64(len(seq))], known: true}
			continue
		}
		queries[i] = benchQuery{state: lfsrindex.MaskState(uint32(h2))}
	}
	return queries
}

func benchFunc(cmd *cobra.Command, _ []string) error {
	polys, err := configPolynomials()
	if err != nil {
		return err
	}
	seed, err := configSeed()
	if err != nil {
		return err
	}
	steps := viper.GetInt(stepsFlag)
	if steps <= 0 || steps > lfsr.Period {
		return fmt.Errorf("steps %d out of range (1..%d)", steps, lfsr.Period)
	}
	n := viper.GetInt(queriesFlag)
	if n <= 0 {
		return fmt.Errorf("queries must be positive, got %d", n)
	}

	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	cmd.Println("Generating sequences...")
	seqs := make([][]uint32, len(polys))
	for ch, poly := range polys {
		seqs[ch] = make([]uint32, steps)
		lfsr.Fill(seqs[ch], poly, seed)
	}
	queries := benchQueries(seqs, n, viper.GetUint32(benchSeedFlag))

	cmd.Println("Warming up queries...")
	for i := 0; i < min(10000, n); i++ {
		_, _ = idx.Find(queries[i].state)
	}

	cmd.Println("Benchmarking queries...")
	var known, found, missedKnown int
	start := time.Now()
	for _, q := range queries {
		_, ok := idx.Find(q.state)
		if ok {
			found++
		}
		if q.known {
			known++
			if !ok {
				missedKnown++
			}
		}
	}
	took := time.Since(start)

	cmd.Printf("Queries: %d (%d known)\n", n, known)
	cmd.Printf("Found: %d\n", found)
	cmd.Printf("Latency: %.1f ns/query\n", float64(took.Nanoseconds())/float64(n))
	cmd.Printf("Throughput: %.2f M/sec\n", float64(n)/took.Seconds()/1_000_000)
	if missedKnown > 0 {
		return fmt.Errorf("%d known states not found: index does not match the polynomial set", missedKnown)
	}
	return nil
}
