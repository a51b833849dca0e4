// Package supabase adapts a hosted Supabase project (GoTrue auth plus
// PostgREST profiles) to the application's identity and profile boundaries.
package supabase
