// Package quote provides current share prices.
//
// Two sources are available:
//   - Client: Alpha Vantage GLOBAL_QUOTE (https://www.alphavantage.co/query)
//   - Demo: a fixed table used when no API key is configured
//
// Every source reports ErrUnknownSymbol for tickers it does not know and
// ErrUnavailable for anything else that prevents a price (network, rate limit,
// timeout). Sources never substitute a default price.
package quote
