// Package serialization reads and writes tinynn model files.
//
// Two formats are supported.
//
// The dense weight format stores one Dense layer per text file:
//
//	rows cols
//	w00 w01 ... w(rows-1)(cols-1)
//	b0 b1 ... b(cols-1)
//
// Values are whitespace separated, so files written by other tools that
// end every value with a space still load.
//
// The snapshot format stores a whole network in one binary file:
//
//	Format Structure:
//	  [4 bytes: Magic "TNNS"]
//	  [N bytes: protobuf wire message (id, created_at, model_type, metadata, tensors)]
//	  [32 bytes: SHA-256 of the message]
//
// Example usage:
//
//	snap := serialization.NewSnapshot("Network", stateDict)
//	if err := serialization.WriteSnapshotFile("model.tnns", snap); err != nil {
//	    log.Fatal(err)
//	}
//
//	snap, err := serialization.ReadSnapshotFile("model.tnns")
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
