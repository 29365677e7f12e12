// Package lfsrindex builds and queries an on-disk index that maps an observed
// LFSR register state back to the (channel, step) that produced it.
//
// A channel is one tap polynomial from an ordered set; each channel is stepped
// 2^17 times from a fixed seed. The index groups the 25-bit states by their
// low bits (the bucket key) and stores a direct-lookup table of fixed-size
// bucket descriptors followed by the packed records, so a lookup reads one
// descriptor and scans one short bucket.
//
// # Basic Usage
//
// Building an index:
//
//	stats, err := lfsrindex.Build(ctx, "lookup.bin", lfsrindex.DefaultPolynomials,
//	    lfsrindex.WithLayout(lfsrindex.WideLayout))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d records, %d bytes\n", stats.Records, stats.IndexSize)
//
// Querying an index:
//
//	idx, err := lfsrindex.Open("lookup.bin", lfsrindex.ReadLayout(lfsrindex.WideLayout))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//
//	if origin, ok := idx.Find(state); ok {
//	    fmt.Printf("channel %d step %d\n", origin.Channel, origin.Step)
//	}
//
// The layout is not recorded in the file. A reader must open an index with
// the layout it was built with.
//
// # Package Structure
//
//   - Public API: builder.go (NewBuilder, Build, Finish, WriteTo), index.go (Open, Find, Lookup, Stats)
//   - Configuration: builder_options.go (BuildOption, OpenOption, With* functions)
//   - Wire format: layout.go (Layout, descriptors, records), origin.go (origin codes, masks)
//   - State table: table.go (sequence generation and bucket grouping)
//   - Serialization: index_writer.go (bounded flush buffer, atomic file writer)
//   - Sequence generation: internal/lfsr
//   - Platform: fallocate_*.go, madvise_*.go (OS-specific hints)
package lfsrindex
