package state

import (
	"fmt"
)

func NodeIdValidator(id NodeId, total int) error {
	if id < 0 || int(id) >= total {
		return fmt.Errorf("%w: node id %d is outside [0, %d)", ErrConfig, id, total)
	}
	return nil
}

func PortValidator(port uint16) error {
	if port == 0 {
		return fmt.Errorf("%w: port must be between 1 and 65535", ErrConfig)
	}
	return nil
}

// ConfigValidator checks a topology config from the point of view of router self.
func ConfigValidator(cfg *TopologyCfg, self NodeId) error {
	if cfg.TotalNodes < 1 {
		return fmt.Errorf("%w: node count must be positive, got %d", ErrConfig, cfg.TotalNodes)
	}
	err := NodeIdValidator(self, cfg.TotalNodes)
	if err != nil {
		return err
	}
	seen := make(map[NodeId]struct{})
	for _, n := range cfg.Neighbours {
		if err := NodeIdValidator(n.Id, cfg.TotalNodes); err != nil {
			return err
		}
		if n.Id == self {
			return fmt.Errorf("%w: router %d lists itself as a neighbour", ErrConfig, self)
		}
		if _, ok := seen[n.Id]; ok {
			return fmt.Errorf("%w: duplicate neighbour %d", ErrConfig, n.Id)
		}
		seen[n.Id] = struct{}{}
		if n.Cost <= 0 || n.Cost >= INF {
			return fmt.Errorf("%w: cost to neighbour %d must be in [1, %d), got %d", ErrConfig, n.Id, INF, n.Cost)
		}
		if err := PortValidator(n.Port); err != nil {
			return fmt.Errorf("neighbour %d: %w", n.Id, err)
		}
	}
	return nil
}

func LocalConfigValidator(cfg *LocalCfg, topo *TopologyCfg) error {
	err := ConfigValidator(topo, cfg.Id)
	if err != nil {
		return err
	}
	return PortValidator(cfg.Port)
}
