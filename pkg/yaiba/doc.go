// Package yaiba parses VRChat logs into structured session timelines.
//
// A log is split into raw entries, each raw entry is offered to an ordered
// chain of format parsers, and the recognized entries are collected into a
// SessionLog in the order they were encountered. Lines no parser
// recognizes are dropped silently: VRChat logs are mostly noise.
//
// # Basic Usage
//
// To parse a log file:
//
//	p, err := yaiba.NewParser(yaiba.WithSalt(salt))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sessionLog, err := p.ParseFile(ctx, "output_log_2022-03-04_21-50-00.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range sessionLog.Filter(yaiba.TypePlayerJoin) {
//	    fmt.Println(e.(*yaiba.PlayerJoin).PseudoUserName)
//	}
//
// To iterate lazily over the entries of a stream:
//
//	for e, err := range p.Entries(yaiba.NewLineReader(r)) {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Println(e.TypeID(), e.At())
//	}
//
// # Privacy
//
// User names are pseudonymized with a salted hash while parsing. Both the
// raw and the pseudonymized name stay in memory; a Policy decides which of
// them, along with player ids and timestamps, reach the JSON or CSV output.
//
// # Concurrency
//
// Each parse call builds its own default parser chain, so one Parser may
// parse independent logs concurrently. Parsers passed with WithParsers are
// used as given and must not be shared between concurrent calls if they
// hold state.
package yaiba
