// Package medstore is a typed client for the clinic console's document store.
//
// Every entity kind is stored as one document per entity in a collection of
// the same name. Writes run as a short sequence of store calls (create,
// identity patch, asset upload, asset patch); a failure part way leaves the
// document in the store and is reported with the stage it reached.
//
//	client, _ := medstore.New(
//	    medstore.WithBaseURL("https://firestore.googleapis.com/v1/projects/p/databases/(default)/documents"),
//	    medstore.WithUploader(uploader),
//	)
//	doc, err := client.Doctors().Create(ctx, medstore.Doctor{Name: "A", Specialization: "ENT"}, photo)
//	switch medstore.ReasonOf(err) {
//	case medstore.Network:
//	    // retry later
//	}
//
// Failures carry one of three reasons: Network, Server or Unknown. Use
// ReasonOf, or errors.Is with ErrNetwork, ErrServer and ErrUnknown.
package medstore
