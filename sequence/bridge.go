package sequence

import (
	"github.com/bionexus/cdbg/encoding/fasta"
	"github.com/bionexus/cdbg/encoding/fastq"
)

// FromFastqRead converts a fastq.Read into a Record. Read.Unk (FASTQ's
// unused third line) has no Record counterpart and is dropped.
func FromFastqRead(r fastq.Read) Record {
	return Record{Name: r.ID, Sequence: r.Seq, Quality: r.Qual}
}

// FromFasta converts every sequence held by f into a Record, in
// f.SeqNames order. FASTA carries no quality, so Quality is left empty.
func FromFasta(f fasta.Fasta) ([]Record, error) {
	names := f.SeqNames()
	records := make([]Record, 0, len(names))
	for _, name := range names {
		n, err := f.Len(name)
		if err != nil {
			return nil, err
		}
		seq, err := f.Get(name, 0, n)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{Name: name, Sequence: seq})
	}
	return records, nil
}
