// Package sunbird embeds the content gateway in a Go program: the same
// validation, retrying transport, collection expansion and read cache as
// the server, without running it.
//
//	client, _ := sunbird.New(ctx,
//	    sunbird.WithSource("diksha", "https://diksha.gov.in"),
//	    sunbird.WithMemoryCache(1024, 10*time.Minute),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, "diksha", map[string]any{
//	    "filters": map[string]any{"se_boards": []string{"CBSE"}},
//	    "limit":   5,
//	})
//	files, err := client.Artifacts(ctx, "diksha", res.Results[0].Identifier())
//	if errors.Is(err, sunbird.ErrNotFound) {
//	    // gone upstream
//	}
package sunbird
