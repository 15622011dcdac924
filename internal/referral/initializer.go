package referral

import "context"

// Initialize reconciles the page URL and the stored attribution into the
// current record of the session. It is the only call a page load makes.
//
// Empty eventID/userID mean "not supplied". The result is nil only when ec
// has no page.
func Initialize(ctx context.Context, ec ExecutionContext, eventID, userID string) *Record {
	if ec == nil {
		return nil
	}
	u, ok := ec.Location()
	if !ok {
		return nil
	}
	store := ec.Session()

	// URL always wins over stored state.
	if token := TokenFromURL(u); token != "" {
		store.Write(ctx, token, SourceURL, eventID, userID)
		return readOrBuild(ctx, store, token, SourceURL, eventID, userID)
	}

	if existing := store.Read(ctx); existing != nil {
		changed := (eventID != "" && eventID != existing.EventID) ||
			(userID != "" && userID != existing.UserID)
		if !changed {
			return existing
		}

		merged := mergeContext(existing, eventID, userID)
		store.Write(ctx, merged.Token, merged.Source, merged.EventID, merged.UserID)
		return readOrBuild(ctx, store, merged.Token, merged.Source, merged.EventID, merged.UserID)
	}

	store.Write(ctx, TokenOrganic, SourceDirect, eventID, userID)
	return readOrBuild(ctx, store, TokenOrganic, SourceDirect, eventID, userID)
}

// mergeContext keeps token and source, letting supplied values win.
func mergeContext(existing *Record, eventID, userID string) Record {
	merged := *existing
	if eventID != "" {
		merged.EventID = eventID
	}
	if userID != "" {
		merged.UserID = userID
	}
	return merged
}

// readOrBuild returns the stored record. When storage is unavailable the
// write was dropped, so the in-memory view is returned instead: the visitor
// still gets a usable attribution for this request.
func readOrBuild(ctx context.Context, store *Store, token, source, eventID, userID string) *Record {
	if rec := store.Read(ctx); rec != nil {
		return rec
	}
	return &Record{
		Token:      token,
		Source:     source,
		CapturedAt: store.now().UnixMilli(),
		EventID:    eventID,
		UserID:     userID,
	}
}
