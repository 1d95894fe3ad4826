// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package forward fills in the request headers a relay adds before sending
a request on someone else's behalf: Accept-Encoding, a synthesized
User-Agent, and an X-Forwarded-For chain naming the original client and
the relaying host.

The environment the relay runs in is an explicit input, Env, rather than
a set of global lookups:

	env := forward.FromOS()
	env.HostIP, err = forward.LocalHostIP(ctx)
	...
	forward.Apply(header, env)

Apply never overwrites a header the caller already set.
*/
package forward
