package main

// See doc.go for documentation
import (
	"flag"
	"io"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/bionexus/cdbg/alphabet"
	"github.com/bionexus/cdbg/cdbg"
	"github.com/bionexus/cdbg/encoding/fasta"
	"github.com/bionexus/cdbg/encoding/fastq"
	"github.com/bionexus/cdbg/graph"
	"github.com/bionexus/cdbg/hashing"
	"github.com/bionexus/cdbg/sequence"
	"github.com/bionexus/cdbg/storage"
)

var (
	k               = flag.Int("k", 31, "K-mer length")
	isFastq         = flag.Bool("fastq", false, "Input is FASTQ rather than FASTA")
	canonical       = flag.Bool("canonical", true, "Hash k-mers canonically rather than forward-only")
	minimizerWindow = flag.Int("minimizer-window", 8, "Unitig tag sampling interval")
	slotsPerShard   = flag.Int("slots-per-shard", 1<<16, "Initial slots per HashSetStorage shard")
)

func records(r io.Reader) ([]sequence.Record, error) {
	if *isFastq {
		sc := fastq.NewScanner(r, fastq.All)
		var recs []sequence.Record
		var read fastq.Read
		for sc.Scan(&read) {
			recs = append(recs, sequence.FromFastqRead(read))
		}
		return recs, nil
	}
	f, err := fasta.New(r)
	if err != nil {
		return nil, err
	}
	return sequence.FromFasta(f)
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	var r io.Reader = os.Stdin
	if flag.NArg() == 1 {
		file, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer file.Close()
		r = file
	}

	recs, err := records(r)
	if err != nil {
		log.Fatalf("%v", err)
	}

	alpha := alphabet.Simple
	var newShifter graph.NewShifterFunc
	if *canonical {
		newShifter = func() hashing.Shifter { return hashing.NewCanShifter(uint16(*k), alpha) }
	} else {
		newShifter = func() hashing.Shifter { return hashing.NewFwdShifter(uint16(*k), alpha) }
	}
	store := storage.NewHashSetStorage(*slotsPerShard)
	dbg := graph.NewDBG[*storage.HashSetStorage](store, newShifter)
	compactor := cdbg.NewStreamingCompactor[*storage.HashSetStorage](dbg, *minimizerWindow)

	nSkipped := 0
	for _, rec := range recs {
		if !rec.Sanitize(alpha) {
			nSkipped++
			continue
		}
		if err := compactor.InsertSequence([]byte(rec.Sequence)); err != nil {
			log.Printf("%s: %v", rec.Name, err)
			nSkipped++
		}
	}

	log.Printf("reads=%d skipped=%d unique_kmers=%d unitigs=%d decisions=%d updates=%d",
		len(recs), nSkipped, store.NUniqueKmers(), compactor.CDBG.NUnitigNodes(),
		compactor.CDBG.NDecisionNodes(), compactor.CDBG.NUpdates())
}
