// Package pdf provides read-only access to PDF files: the object model,
// the object syntax parser, the cross-reference table (classical and
// stream-based), the Standard Security Handler, and the stream filter
// dispatch that the higher-level rendering packages build on.
//
// This package treats a PDF file as a table of indirect objects (typically
// Dictionaries and Streams) reachable from a trailer. Objects are read
// lazily, in whatever order the caller asks for them:
//
//	data, err := os.ReadFile("in.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := pdf.Open(data, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	catalog, err := doc.Catalog()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	... use catalog.Pages to locate the page tree ...
//
// The following types implement native PDF objects and all satisfy the
// [Object] interface:
//
//	Array
//	Boolean
//	Dict
//	Integer
//	Name
//	Real
//	Reference
//	*Stream
//	String
//
// Subpackages implement the rest of the rendering pipeline: font program
// parsing (font), page graphics state (graphics), content stream
// interpretation (content), image decoding (pdfimage), rasterization
// (raster), and the process-wide caches and façade that tie them together
// (cache, engine).
package pdf
