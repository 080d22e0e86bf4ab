// Package mediacontainer turns the media server's loosely typed XML and JSON
// documents into typed values.
//
// Every document is wrapped in a MediaContainer envelope. Load decodes a
// document for one known container type, checks that every required
// attribute is present, and falls back to the service's error envelope when
// the document does not match:
//
//	info, err := mediacontainer.LoadServerInfo(body, mediacontainer.ContentXML)
//	var svc *mediacontainer.ServiceError
//	if errors.As(err, &svc) {
//		// the server reported an error of its own
//	}
//
// Scalars go through the coercers in this package. Booleans accept
// true/false/1/0/"" in any case. Comma-separated lists treat "" as an empty
// list and absence as no value. Timestamps are Unix seconds. Versions use
// the four-part MAJOR.MINOR.PATCH.BUILD form.
//
// Nothing here performs I/O or keeps state; all functions are safe for
// concurrent use.
package mediacontainer
